package api

import (
	"net/http"

	model "github.com/okian/labviz/internal/domain/model"
)

// LabsHandler serves dataset listings and records.
type LabsHandler struct {
	deps       LabDependencies
	maxRecords int
}

// NewLabsHandler creates a new labs handler. maxRecords caps the records
// endpoint; non-positive means no cap.
func NewLabsHandler(deps LabDependencies, maxRecords int) *LabsHandler {
	return &LabsHandler{deps: deps, maxRecords: maxRecords}
}

type recordsResponse struct {
	Lab         string                   `json:"lab"`
	Total       int                      `json:"total"`
	Records     []model.NormalizedRecord `json:"records"`
	Diagnostics model.Diagnostics        `json:"diagnostics"`
}

// HandleList handles GET /labs.
func (h *LabsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Labs(r.Context()))
}

// HandleRecords handles GET /labs/{name}/records?limit=N.
func (h *LabsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_records"
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	if h.maxRecords > 0 && (limit == 0 || limit > h.maxRecords) {
		limit = h.maxRecords
	}

	ds, err := h.deps.Dataset(r.Context(), r.PathValue("name"))
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	recs := ds.Records
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	writeJSON(w, http.StatusOK, recordsResponse{
		Lab:         ds.Name,
		Total:       ds.Len(),
		Records:     recs,
		Diagnostics: ds.Diag,
	})
}

// HandleGroups handles GET /labs/{name}/groups?field=F.
func (h *LabsHandler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_groups"
	groups, err := h.deps.Groups(r.Context(), r.PathValue("name"), r.URL.Query().Get("field"))
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// HandleReload handles POST /labs/{name}/reload. A source failure still
// returns the refreshed summary, with its load_error set.
func (h *LabsHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	sum, err := h.deps.Reload(r.Context(), r.PathValue("name"))
	if err != nil && sum.Name == "" {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
