package api

import (
	"net/http"
)

// ChartHandler serves layouts and rendered charts.
type ChartHandler struct {
	deps RenderDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps RenderDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleLayout handles GET /labs/{name}/layout?width=W.
func (h *ChartHandler) HandleLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_layout"
	width, err := floatParam(r, "width")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	l, err := h.deps.Layout(r.Context(), r.PathValue("name"), width)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// HandleChart handles GET /labs/{name}/chart.svg?width=W&section=S.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	width, err := floatParam(r, "width")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	res, err := h.deps.Chart(r.Context(), r.PathValue("name"), width, r.URL.Query().Get("section"))
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeSVG(w, []byte(res.SVG))
}

// HandleTrend handles GET /labs/{name}/trend.svg?group=G&width=W.
func (h *ChartHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trend"
	width, err := intParam(r, "width")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	out, err := h.deps.Trend(r.Context(), r.PathValue("name"), r.URL.Query().Get("group"), width)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeSVG(w, out)
}
