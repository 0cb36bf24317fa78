package server

import (
	"fmt"
	"net/http"

	"github.com/quantfold/stratview/internal/models"
	"github.com/quantfold/stratview/internal/params"
	"github.com/quantfold/stratview/internal/services/analysis"
)

// --- Analysis handlers ---

// handleAnalysis renders the analysis view model. GET takes the flat
// textual query-parameter form; POST takes a JSON body where the strategy
// payload may be an object directly and the metrics may be numbers or
// strings.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	parsed, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	view := s.app.AnalysisService.BuildView(analysisInput(parsed))
	WriteJSON(w, http.StatusOK, view)
}

// parseRequest decodes the parameter tuple from either request form. The
// bool result is false when a malformed POST body was already rejected.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (params.Parsed, bool) {
	if r.Method == http.MethodPost {
		var req params.Request
		if !DecodeJSON(w, r, &req) {
			return params.Parsed{}, false
		}
		return s.app.Parser.Parse(req), true
	}
	return s.app.Parser.ParseQuery(r.URL.Query()), true
}

func analysisInput(p params.Parsed) analysis.Input {
	return analysis.Input{
		Allocation:     p.Allocation,
		ExpectedReturn: p.ExpectedReturn,
		SharpeRatio:    p.SharpeRatio,
		Label:          p.Label,
	}
}

// --- Chart handlers ---

func (s *Server) handleChartAllocation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	parsed := s.app.Parser.ParseQuery(r.URL.Query())
	records := s.app.AnalysisService.ChartRecords(parsed.Allocation)

	png, err := s.app.AnalysisService.RenderAllocationPie(records)
	writeChart(w, png, err)
}

func (s *Server) handleChartMetrics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	parsed := s.app.Parser.ParseQuery(r.URL.Query())

	png, err := s.app.AnalysisService.RenderMetricsBar(parsed.ExpectedReturn, parsed.SharpeRatio)
	writeChart(w, png, err)
}

func (s *Server) handleChartGrowth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	parsed := s.app.Parser.ParseQuery(r.URL.Query())
	points := s.app.AnalysisService.ProjectionSeries(parsed.ExpectedReturn)

	png, err := s.app.AnalysisService.RenderGrowthLine(points)
	writeChart(w, png, err)
}

// --- Navigation handlers ---

// handleNavigate materializes exactly one navigation intent for the routing
// collaborator. No held data changes.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	switch req.Action {
	case "back":
		WriteJSON(w, http.StatusOK, models.BackIntent())
	case "root":
		WriteJSON(w, http.StatusOK, models.RootIntent())
	default:
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unknown navigation action: %q", req.Action))
	}
}
