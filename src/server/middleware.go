package server

import (
	"net/http"
	"time"

	"github.com/javierwelch/challenge-latam/src/logger"
)

// Middleware holds the shared HTTP middleware.
type Middleware struct {
	logger *logger.Logger
}

func NewMiddleware(log *logger.Logger) *Middleware {
	return &Middleware{logger: log.Named("http")}
}

// Logger logs one line per request.
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		m.logger.Debug("request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("took", time.Since(start)))
	})
}

// Recoverer converts handler panics into 500 responses.
func (m *Middleware) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error("handler panic",
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
