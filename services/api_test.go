package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xairline/xa-ffb/models"
)

func newTestAPI(t *testing.T) (*Bridge, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sim := newXplaneFake()
	sim.define("sim/x")
	b, _, mockLogger := newTestBridge(sim)
	return b, NewAPIService(b, mockLogger).Handler()
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAPITelemetry(t *testing.T) {
	b, h := newTestAPI(t)

	w := doRequest(h, http.MethodGet, "/apis/telemetry", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	b.Tick()
	w = doRequest(h, http.MethodGet, "/apis/telemetry", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "XPLANE", snap["src"])
	assert.Equal(t, "Cessna 172 SP", snap["N"])
}

func TestAPICommandsAndOverrides(t *testing.T) {
	b, h := newTestAPI(t)

	w := doRequest(h, http.MethodPost, "/apis/commands", `{"command":"OVERRIDE:pedals=true"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = doRequest(h, http.MethodPost, "/apis/commands", `{"command":"AXIS:px=-0.5"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(h, http.MethodGet, "/apis/overrides", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"joystick":false,"pedals":true,"collective":false,"axes":{"jx":0,"jy":0,"px":-0.5,"cy":0}}`, w.Body.String())
	assert.True(t, b.Dispatcher.State().Pedals())
}

func TestAPICommandErrors(t *testing.T) {
	_, h := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `OVERRIDE:pedals=true`},
		{"missing command", `{}`},
		{"garbage command", `{"command":"GARBAGE"}`},
		{"bad override", `{"command":"OVERRIDE:throttle=true"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/apis/commands", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAPISources(t *testing.T) {
	b, h := newTestAPI(t)

	w := doRequest(h, http.MethodPost, "/apis/commands", `{"command":"SUBSCRIBE:dataref=sim/x,type=float,tag=Foo,precision=2"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	// registration happens on the next frame
	b.Tick()

	w = doRequest(h, http.MethodGet, "/apis/sources", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sources []models.TelemetrySource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "Foo", sources[0].Key)
	assert.Equal(t, "sim/x", sources[0].Path)
	assert.Equal(t, 2, sources[0].Precision)
	assert.Contains(t, w.Body.String(), `"type":"float"`)
}
