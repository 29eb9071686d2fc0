package middleware

import (
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"kennel-exchange/internal/platform/httpjson"
)

// Recover reemplaza chimw.Recoverer: loguea el panic con zap y responde JSON 500.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if r.Header.Get("Connection") != "Upgrade" {
					httpjson.Error(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
