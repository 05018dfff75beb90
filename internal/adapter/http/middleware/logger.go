package middleware

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger writes one line per request once the response is sent.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(started)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			actor := ActorFromContext(r.Context())
			if actor.ID != "" {
				fields = append(fields, zap.String("actor_id", actor.ID), zap.String("actor_role", string(actor.Role)))
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("http request", fields...)
			default:
				log.Info("http request", fields...)
			}
		})
	}
}
