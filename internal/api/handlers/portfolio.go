package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/portfolio"
	"github.com/wonny/varlytics/pkg/logger"
)

// PortfolioAnalyzer is the portfolio side of the engine
type PortfolioAnalyzer interface {
	Analyze(ctx context.Context, holdings []contracts.Holding, params contracts.PortfolioParams) (*portfolio.Report, error)
	Detailed(ctx context.Context, holdings []contracts.Holding, params contracts.PortfolioParams) (*portfolio.DetailedReport, error)
}

// PortfolioHandler handles portfolio risk endpoints
type PortfolioHandler struct {
	analyzer PortfolioAnalyzer
	logger   *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(analyzer PortfolioAnalyzer, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// PortfolioRequest is the body of both portfolio endpoints. Omitted knobs
// take the documented defaults.
type PortfolioRequest struct {
	Holdings []contracts.Holding `json:"holdings"`
	contracts.PortfolioParams
}

// AnalyzeResponse wraps the full report
type AnalyzeResponse struct {
	Status   string            `json:"status"`
	Analysis *portfolio.Report `json:"portfolio_analysis"`
}

// VaRResponse wraps the detailed report
type VaRResponse struct {
	Status   string                    `json:"status"`
	Analysis *portfolio.DetailedReport `json:"var_analysis"`
}

// Analyze runs the full portfolio analysis
// POST /api/portfolio/analyze
func (h *PortfolioHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodePortfolioRequest(w, r)
	if err != nil {
		respondServiceError(w, err, "Error analyzing portfolio")
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), req.Holdings, req.PortfolioParams)
	if err != nil {
		h.logger.WithError(err).WithField("holdings", len(req.Holdings)).Error("Portfolio analysis failed")
		respondServiceError(w, err, "Error analyzing portfolio")
		return
	}

	respondJSON(w, http.StatusOK, AnalyzeResponse{Status: "success", Analysis: report})
}

// VaR runs the VaR-focused analysis
// POST /api/portfolio/var
func (h *PortfolioHandler) VaR(w http.ResponseWriter, r *http.Request) {
	req, err := decodePortfolioRequest(w, r)
	if err != nil {
		respondServiceError(w, err, "Error calculating VaR")
		return
	}

	report, err := h.analyzer.Detailed(r.Context(), req.Holdings, req.PortfolioParams)
	if err != nil {
		h.logger.WithError(err).WithField("holdings", len(req.Holdings)).Error("Portfolio VaR failed")
		respondServiceError(w, err, "Error calculating VaR")
		return
	}

	respondJSON(w, http.StatusOK, VaRResponse{Status: "success", Analysis: report})
}

// Example returns a sample request body
// GET /api/portfolio/example
func (h *PortfolioHandler) Example(w http.ResponseWriter, r *http.Request) {
	example := PortfolioRequest{
		Holdings: []contracts.Holding{
			{Symbol: "RELIANCE", Quantity: 100},
			{Symbol: "TCS", Quantity: 50},
			{Symbol: "INFY", Quantity: 75},
			{Symbol: "HDFCBANK", Quantity: 60},
			{Symbol: "ICICIBANK", Quantity: 80},
			{Symbol: "HINDUNILVR", Quantity: 30},
			{Symbol: "ITC", Quantity: 200},
			{Symbol: "SBIN", Quantity: 150},
			{Symbol: "BHARTIARTL", Quantity: 100},
			{Symbol: "LT", Quantity: 40},
		},
		PortfolioParams: contracts.DefaultPortfolioParams(),
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"example_portfolio": example,
		"usage":             "POST this data to /api/portfolio/analyze or /api/portfolio/var",
	})
}

func decodePortfolioRequest(w http.ResponseWriter, r *http.Request) (*PortfolioRequest, error) {
	req := &PortfolioRequest{PortfolioParams: contracts.DefaultPortfolioParams()}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body: %v", contracts.ErrValidation, err)
	}
	return req, nil
}
