package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/varlytics/internal/batch"
	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/logger"
)

// SimulationService is the catalogue side of the engine
type SimulationService interface {
	RunAll(ctx context.Context, symbol string, params contracts.SimulationParams, optimized bool) (*batch.RunAllResponse, error)
	RunEntry(ctx context.Context, symbol, name string, params contracts.SimulationParams, opts batch.EntryOptions) (*batch.EntryResponse, error)
	Report(ctx context.Context, symbol string, params contracts.SimulationParams) (*batch.Report, error)
}

// SimulationHandler handles catalogue and specialty report endpoints
// SSOT: simulation API handlers live in this struct only
type SimulationHandler struct {
	service SimulationService
	logger  *logger.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(service SimulationService, log *logger.Logger) *SimulationHandler {
	return &SimulationHandler{
		service: service,
		logger:  log,
	}
}

// Available lists the catalogue
// GET /api/simulations/available
func (h *SimulationHandler) Available(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, batch.Listing())
}

// RunAll runs every catalogue entry for a symbol
// GET /api/simulations/{symbol}/all
func (h *SimulationHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	params, err := simulationParams(r, contracts.DefaultDays)
	if err != nil {
		respondServiceError(w, err, "Error running simulations")
		return
	}
	optimized, err := queryBool(r, "optimized", true)
	if err != nil {
		respondServiceError(w, err, "Error running simulations")
		return
	}

	resp, err := h.service.RunAll(r.Context(), symbol, params, optimized)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Run-all failed")
		respondServiceError(w, err, "Error running simulations")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// RunEntry runs one catalogue entry
// GET /api/simulations/{symbol}/{type}
func (h *SimulationHandler) RunEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol, name := vars["symbol"], vars["type"]

	params, err := simulationParams(r, contracts.DefaultDays)
	if err != nil {
		respondServiceError(w, err, "Error running simulation")
		return
	}
	includeChart, err := queryBool(r, "include_chart_data", true)
	if err != nil {
		respondServiceError(w, err, "Error running simulation")
		return
	}
	compress, err := queryBool(r, "compress", false)
	if err != nil {
		respondServiceError(w, err, "Error running simulation")
		return
	}

	resp, err := h.service.RunEntry(r.Context(), symbol, name, params, batch.EntryOptions{
		IncludeChart: includeChart,
		Compress:     compress,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"type":   name,
		}).Warn("Simulation failed")
		respondServiceError(w, err, "Error running simulation")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Report runs the EGARCH skew-t specialty report
// GET /api/varlytics-special/egarch-skewed-t/{symbol}
func (h *SimulationHandler) Report(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	params, err := simulationParams(r, batch.DefaultReportDays)
	if err != nil {
		respondServiceError(w, err, "Error running specialty report")
		return
	}

	report, err := h.service.Report(r.Context(), symbol, params)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Specialty report failed")
		respondServiceError(w, err, "Error running specialty report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
