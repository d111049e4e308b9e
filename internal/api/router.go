package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/folio/internal/api/handlers"
	"github.com/wonny/folio/pkg/logger"
)

// NewRouter creates and configures the HTTP router. The jobs handler
// is optional; without one the ops endpoints are not registered.
func NewRouter(analysisHandler *handlers.AnalysisHandler, jobsHandler *handlers.JobsHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Analysis endpoints
	api.HandleFunc("/analysis/optimize", analysisHandler.Optimize).Methods("POST")
	api.HandleFunc("/analysis/risk", analysisHandler.Risk).Methods("POST")
	api.HandleFunc("/analysis/factors", analysisHandler.Factors).Methods("POST")
	api.HandleFunc("/analysis/scenario", analysisHandler.Scenario).Methods("POST")
	api.HandleFunc("/analysis/backtest", analysisHandler.Backtest).Methods("POST")

	// Scheduled-job ops endpoints
	if jobsHandler != nil {
		api.HandleFunc("/jobs", jobsHandler.List).Methods("GET")
		api.HandleFunc("/jobs/{name}/history", jobsHandler.History).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", jobsHandler.Run).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "folio-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
