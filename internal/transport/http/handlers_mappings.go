//go:generate mockgen -source=handlers_mappings.go -destination=mocks/mocks.go -package=mocks MappingSaver

package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idbridge/internal/mapping"
	dErrors "idbridge/pkg/domain-errors"
	"idbridge/pkg/platform/httputil"
	"idbridge/pkg/requestcontext"
)

// MappingSaver saves operator-supplied mappings.
type MappingSaver interface {
	SaveBatch(ctx context.Context, mappings []*mapping.Mapping) ([]error, error)
}

// MappingsHandler serves the operator batch-save endpoint.
type MappingsHandler struct {
	saver  MappingSaver
	logger *slog.Logger
}

func NewMappingsHandler(saver MappingSaver, logger *slog.Logger) *MappingsHandler {
	return &MappingsHandler{saver: saver, logger: logger}
}

func (h *MappingsHandler) Register(r chi.Router) {
	r.Post("/mappings", h.HandleSaveBatch)
}

type mappingInput struct {
	ProviderName     string `json:"provider_name"`
	PrincipalID      string `json:"principal_id"`
	TargetIdentifier string `json:"target_identifier"`
}

type saveBatchRequest struct {
	Mappings []mappingInput `json:"mappings"`
}

type recordResult struct {
	Index            int    `json:"index"`
	UniqueKey        string `json:"unique_key,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type saveBatchResponse struct {
	Results []recordResult `json:"results"`
}

// HandleSaveBatch handles POST /v1/mappings. Rejected records are reported
// per index; the response is 200 unless the whole batch failed.
func (h *MappingsHandler) HandleSaveBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveBatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid mappings payload"))
		return
	}
	if len(req.Mappings) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "mappings must not be empty"))
		return
	}

	batch := make([]*mapping.Mapping, len(req.Mappings))
	for i, in := range req.Mappings {
		batch[i] = &mapping.Mapping{
			ProviderName:     in.ProviderName,
			PrincipalID:      in.PrincipalID,
			TargetIdentifier: in.TargetIdentifier,
		}
	}

	errs, err := h.saver.SaveBatch(ctx, batch)
	if err != nil {
		h.logger.WarnContext(ctx, "mapping batch rejected",
			"request_id", requestcontext.RequestID(ctx),
			"size", len(batch),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := saveBatchResponse{Results: make([]recordResult, len(batch))}
	for i, m := range batch {
		res := recordResult{Index: i}
		if i < len(errs) && errs[i] != nil {
			res.Error = string(dErrors.CodeOf(errs[i]))
			var de *dErrors.Error
			if errors.As(errs[i], &de) && de.Code != dErrors.CodeInternal {
				res.ErrorDescription = de.Message
			}
		} else {
			res.UniqueKey = m.UniqueKey
		}
		resp.Results[i] = res
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
