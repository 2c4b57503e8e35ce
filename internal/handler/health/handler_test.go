package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

func TestHealthReportsComponents(t *testing.T) {
	h := New(false, Backends{
		Recognizer:  "mock",
		Generator:   "ark",
		Synthesizer: "mock",
		Telephony:   "plivo",
	}, fixedCount(3))
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.False(t, body.DemoMode)
	assert.Equal(t, 3, body.Sessions)
	assert.Equal(t, components{Generator: true, Telephony: true}, body.Components)
	assert.Equal(t, "ark", body.Backends.Generator)
	assert.True(t, body.Timestamp.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestIsReal(t *testing.T) {
	for _, name := range []string{"", "mock", "rule", "simulated"} {
		assert.False(t, isReal(name), name)
	}
	for _, name := range []string{"ark", "openai", "plivo"} {
		assert.True(t, isReal(name), name)
	}
}
