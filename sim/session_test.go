package sim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSession(strings.TrimPrefix(srv.URL, "http://"), "tok-123")
}

func TestSessionStart(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/simulation/start", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(StartResult{
			ID:      "sim-1",
			BasePos: WireVec{X: 1, Y: 2},
			SensorUnits: map[UnitID]WireVec{
				"1": {X: 10, Y: 10},
				"2": {X: -10, Y: 10},
			},
		})
	})

	res, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, "sim-1", res.ID)
	assert.Equal(t, WireVec{1, 2}, res.BasePos)
	assert.Len(t, res.SensorUnits, 2)
}

func TestSessionLaunchStrike(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/simulation/sim-1/strike", r.URL.Path)
		_ = json.NewEncoder(w).Encode(LaunchResult{ID: "9", Pos: WireVec{X: 3, Y: 4}})
	})

	res, err := s.LaunchStrike("sim-1")
	require.NoError(t, err)
	assert.Equal(t, UnitID("9"), res.ID)
}

func TestSessionStatus(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/simulation/sim-1/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "SUCCESS"})
	})

	status, err := s.Status("sim-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status)
	assert.True(t, status.Terminal())
	assert.False(t, StatusRunning.Terminal())
}

func TestSessionErrorStatus(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
