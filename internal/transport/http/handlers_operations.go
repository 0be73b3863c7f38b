package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "idbridge/pkg/domain-errors"
	"idbridge/pkg/platform/httputil"
	"idbridge/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// Invoker runs a named operation.
type Invoker interface {
	Invoke(ctx context.Context, operation string, args map[string]any) (any, error)
}

// OperationsHandler exposes the facade to remote callers.
type OperationsHandler struct {
	invoker Invoker
	logger  *slog.Logger
}

func NewOperationsHandler(invoker Invoker, logger *slog.Logger) *OperationsHandler {
	return &OperationsHandler{invoker: invoker, logger: logger}
}

func (h *OperationsHandler) Register(r chi.Router) {
	r.Post("/operations/{operation}", h.HandleInvoke)
}

type invokeResponse struct {
	Result any `json:"result"`
}

// HandleInvoke handles POST /v1/operations/{operation}. The body is a JSON
// object of named arguments; an empty body means no arguments.
func (h *OperationsHandler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	operation := chi.URLParam(r, "operation")

	args, err := decodeArgs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.invoker.Invoke(ctx, operation, args)
	if err != nil {
		h.logger.WarnContext(ctx, "operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"operation", operation,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, invokeResponse{Result: result})
}

func decodeArgs(r *http.Request) (map[string]any, error) {
	args := map[string]any{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&args)
	if errors.Is(err, io.EOF) {
		return args, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "request body must be a JSON object")
	}
	return args, nil
}
