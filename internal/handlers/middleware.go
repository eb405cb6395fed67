package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/metrics"
)

// RequestIDHeader carries the per-request id
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags every response with a request id, logs it and records it
// in m when m is not nil. A valid incoming id is kept.
func RequestLogger(m *metrics.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if m != nil {
				m.ObserveRequest(route, rec.status, elapsed)
			}
			logger.Info.Printf("📡 %s %s %d %v [%s]", r.Method, r.URL.Path, rec.status, elapsed, id)
		})
	}
}
