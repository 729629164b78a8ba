package webhook

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AnalizatorMP/sms-analizator.service/internal/logger"
)

// NewRouter builds the HTTP router for the service. Method and path
// mismatches and panics all produce the same structured JSON bodies the
// webhook endpoint itself uses; a caller never sees a bare stack trace.
func NewRouter(h *Handler, log *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(logger.RequestLogger(log))
	r.Use(recoverer(log))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})

	r.Post("/webhook/{token}", h.HandleWebhook)

	return r
}

// recoverer converts any panic escaping a handler into a structured 500.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.ErrorContext(r.Context(), "Panic while handling request",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
						"request_id", chimiddleware.GetReqID(r.Context()))
					writeError(w, http.StatusInternalServerError, msgInternalError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
