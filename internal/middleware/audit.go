package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marcojr93/cntrackerv1/internal/infrastructure"
)

// AuditLog records requests that change the loaded register (reloads and
// uploads) with their outcome
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	logger = infrastructure.WithComponent(logger, "audit")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger.InfoContext(ctx, "register change requested",
				slog.String("event_type", "register_change"),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int64("content_length", r.ContentLength),
			)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(ctx, "register change completed",
				slog.String("event_type", "register_change"),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Bool("applied", status < 400),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
