package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/search"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

type mockPrintsSession struct {
	state  session.PrintsState
	err    error
	name   string
	closed bool
}

func (m *mockPrintsSession) Inspect(_ context.Context, name string) (session.PrintsState, error) {
	m.name = name
	return m.state, m.err
}

func (m *mockPrintsSession) CloseInspect() session.PrintsState {
	m.closed = true
	return session.PrintsState{}
}

func (m *mockPrintsSession) PrintsSnapshot() session.PrintsState {
	return m.state
}

func TestPrintsHandler_Inspect(t *testing.T) {
	mock := &mockPrintsSession{state: session.PrintsState{
		Open:        true,
		Name:        "Lightning Bolt",
		Prints:      []scryfall.Card{{ID: "lea"}, {ID: "m10"}},
		TotalPrints: 2,
	}}
	h := NewPrintsHandler(mock)

	rec := httptest.NewRecorder()
	h.Inspect(rec, jsonRequest(t, http.MethodPost, "/api/v1/prints", InspectRequest{Name: "Lightning Bolt"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lightning Bolt", mock.name)

	var body struct {
		Data session.PrintsState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.TotalPrints)
	assert.True(t, body.Data.Open)
}

func TestPrintsHandler_InspectNotFound(t *testing.T) {
	err := search.Classify(&scryfall.NetworkError{Status: 404}, search.MsgNoPrints)
	h := NewPrintsHandler(&mockPrintsSession{err: err})

	rec := httptest.NewRecorder()
	h.Inspect(rec, jsonRequest(t, http.MethodPost, "/api/v1/prints", InspectRequest{Name: "Nope"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, search.MsgNoPrints, decodeError(t, rec).Message)
}

func TestPrintsHandler_GetAndClose(t *testing.T) {
	mock := &mockPrintsSession{state: session.PrintsState{Open: true, Name: "Bolt"}}
	h := NewPrintsHandler(mock)

	rec := httptest.NewRecorder()
	h.GetPrints(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prints", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Bolt"`)

	rec = httptest.NewRecorder()
	h.Close(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/prints", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mock.closed)
}

func TestSystemHandler_Metrics(t *testing.T) {
	m := metrics.NewSearchMetrics()
	m.RecordCache(true)
	m.RecordCache(false)
	h := NewSystemHandler(m, nil, func() int { return 3 })

	rec := httptest.NewRecorder()
	h.GetMetrics(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data metrics.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.Data.CacheHits)
	assert.InDelta(t, 50.0, body.Data.CacheHitRate, 0.001)

	rec = httptest.NewRecorder()
	h.ResetMetrics(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/metrics", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, m.GetStats().CacheHits)

	rec = httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/status", nil))
	assert.Contains(t, rec.Body.String(), `"clients":3`)
}
