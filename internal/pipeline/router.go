package pipeline

import (
	"context"
	"log/slog"
)

// Router dispatches delivered batches to the handler registered for their
// kind. Batches of an unregistered kind are logged and dropped so the
// transport can acknowledge them.
type Router struct {
	handlers map[Kind]BatchHandler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		handlers: make(map[Kind]BatchHandler),
		logger:   logger,
	}
}

// Register adds a handler for a specific kind.
func (r *Router) Register(kind Kind, handler BatchHandler) {
	r.handlers[kind] = handler
}

func (r *Router) HandleBatch(ctx context.Context, kind Kind, batch []ChangeEvent) error {
	if len(batch) == 0 {
		return nil
	}
	handler, ok := r.handlers[kind]
	if !ok {
		r.logger.WarnContext(ctx, "no handler for event kind, dropping batch",
			"kind", kind,
			"size", len(batch),
		)
		return nil
	}
	return handler.HandleBatch(ctx, kind, batch)
}
