package http

import (
	"context"
	"net/http"

	"github.com/bft-labs/inspectgw/internal/domain"
	"github.com/bft-labs/inspectgw/pkg/log"
)

// Searcher runs the inspection search. *app.Gateway satisfies it.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.Record, error)
}

// StateFunc reports the server lifecycle state by name, e.g. "Running".
type StateFunc func() string

type healthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

type handler struct {
	searcher Searcher
	state    StateFunc
	redact   bool
	logger   log.Logger
}

func (h *handler) requestLogger(r *http.Request) log.Logger {
	return h.logger.With(log.String("request_id", RequestIDFromContext(r.Context())))
}

// search serves POST /search.
func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	req, err := decodeSearchRequest(r.Body)
	if err != nil {
		writeError(w, logger, h.redact, err)
		return
	}

	records, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		writeError(w, logger, h.redact, err)
		return
	}
	writeJSON(w, logger, http.StatusOK, records)
}

// health serves GET /healthz. It reports 503 unless the server is running.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	state := "Running"
	if h.state != nil {
		state = h.state()
	}
	if state != "Running" {
		writeJSON(w, h.logger, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", State: state})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok", State: state})
}
