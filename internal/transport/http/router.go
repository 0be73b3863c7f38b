package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "idbridge/pkg/platform/middleware/auth"
	"idbridge/pkg/platform/middleware/request"
	"idbridge/pkg/platform/middleware/requesttime"
)

// NewRouter wires the public endpoints. Everything under /v1 requires a
// bearer token; health and metrics are open.
func NewRouter(ops *OperationsHandler, mappings *MappingsHandler, validator authmw.JWTValidator, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, logger))
		ops.Register(r)
		if mappings != nil {
			mappings.Register(r)
		}
	})
	return r
}
