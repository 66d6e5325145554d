package handlers

import (
	"net/http"

	"github.com/ramonehamilton/cardsearch/internal/api/response"
	"github.com/ramonehamilton/cardsearch/internal/cache"
	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/version"
)

// SystemHandler handles status and metrics requests.
type SystemHandler struct {
	metrics *metrics.SearchMetrics
	store   cache.Store
	clients func() int
}

// NewSystemHandler creates a new SystemHandler. clients reports the number of
// connected WebSocket clients and may be nil.
func NewSystemHandler(m *metrics.SearchMetrics, store cache.Store, clients func() int) *SystemHandler {
	return &SystemHandler{metrics: m, store: store, clients: clients}
}

// StatusResponse summarizes the running service.
type StatusResponse struct {
	Version      string `json:"version"`
	CacheEntries int    `json:"cache_entries"`
	Clients      int    `json:"clients"`
	Uptime       string `json:"uptime,omitempty"`
}

// GetStatus returns the service status.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	status := StatusResponse{Version: version.Version}
	if h.store != nil {
		status.CacheEntries = h.store.Len()
	}
	if h.clients != nil {
		status.Clients = h.clients()
	}
	status.Uptime = h.metrics.GetStats().Uptime
	response.Success(w, status)
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.Version,
		"service": "cardsearch-api",
	})
}

// GetMetrics returns the search metrics snapshot.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.metrics.GetStats())
}

// ResetMetrics clears all counters and histograms.
func (h *SystemHandler) ResetMetrics(w http.ResponseWriter, _ *http.Request) {
	h.metrics.Reset()
	response.NoContent(w)
}
