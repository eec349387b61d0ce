package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(handler.logRequests)

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/portfolio/summary", handler.GetSummary).Methods("GET")
	api.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/positions/{symbol}", handler.GetPosition).Methods("GET")
	api.HandleFunc("/cash", handler.GetCash).Methods("GET")
	api.HandleFunc("/rate", handler.GetRate).Methods("GET")

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
