package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/pkg/logger"
)

// AnalysisHandler exposes the engine's analyses over HTTP.
type AnalysisHandler struct {
	engine *engine.Service
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(svc *engine.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{engine: svc, logger: log}
}

// Optimize runs a Monte-Carlo optimization.
// POST /api/analysis/optimize
func (h *AnalysisHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req engine.OptimizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, req)
}

// Risk computes VaR/CVaR, correlation and contributions.
// POST /api/analysis/risk
func (h *AnalysisHandler) Risk(w http.ResponseWriter, r *http.Request) {
	var req engine.RiskRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, req)
}

// Factors regresses the allocation on the three-factor series.
// POST /api/analysis/factors
func (h *AnalysisHandler) Factors(w http.ResponseWriter, r *http.Request) {
	var req engine.FactorRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, req)
}

// Scenario applies a sector stress scenario.
// POST /api/analysis/scenario
func (h *AnalysisHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	var req engine.ScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, req)
}

// Backtest replays the allocation buy-and-hold.
// POST /api/analysis/backtest
func (h *AnalysisHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	var req engine.BacktestRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, req)
}

func (h *AnalysisHandler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request, req engine.Request) {
	result, err := h.engine.Dispatch(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Analysis failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// statusFor maps engine failures to HTTP statuses. Input problems are
// the caller's fault; provider outages are a bad gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrInsufficientAssets),
		errors.Is(err, contracts.ErrInfeasibleConstraints),
		errors.Is(err, contracts.ErrInvalidView):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrUpstreamData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
