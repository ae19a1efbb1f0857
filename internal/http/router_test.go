package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsync/internal/auth"
	"medsync/internal/config"
	"medsync/internal/gemini"
	"medsync/internal/logger"
	"medsync/internal/meds"
)

type memSnapshots struct {
	snaps map[string]meds.Snapshot
}

func (m *memSnapshots) Load(_ context.Context, email string) (meds.Snapshot, bool, error) {
	s, ok := m.snaps[email]
	return s, ok, nil
}

func (m *memSnapshots) Save(_ context.Context, email string, snap meds.Snapshot) error {
	m.snaps[email] = snap
	return nil
}

type testAPI struct {
	srv   *httptest.Server
	token string
}

func newTestAPI(t *testing.T, model *httptest.Server) *testAPI {
	t.Helper()

	jwtSvc := auth.NewJWT("test-secret")
	store := &memSnapshots{snaps: map[string]meds.Snapshot{
		// existing user with empty state: no starter seed
		"user@example.com": {},
	}}
	sessions := meds.NewManager(store, nil, logger.Noop())

	ai := gemini.NewClient("test-key", "test-model")
	if model != nil {
		ai.BaseURL = model.URL
		ai.HTTP = model.Client()
	}

	r := NewRouter(config.Config{}, nil, jwtSvc, sessions, ai)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	token, err := jwtSvc.Sign("user@example.com")
	require.NoError(t, err)

	return &testAPI{srv: srv, token: token}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRequiresAuth(t *testing.T) {
	api := newTestAPI(t, nil)

	resp, err := http.Get(api.srv.URL + "/medications")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMedicationLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t, nil)

	// create
	resp := api.do(t, http.MethodPost, "/medications", map[string]any{
		"name":            "Aspirin",
		"dosage":          "81mg",
		"formType":        "tablet",
		"frequency":       "Daily",
		"initialQuantity": 30,
		"currentQuantity": 30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[meds.Medication](t, resp)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Active)

	// the add created exactly one pending entry
	resp = api.do(t, http.MethodGet, "/schedule", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]meds.ScheduleEntry](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].MedicationID)
	assert.Equal(t, meds.DosePending, entries[0].Status)

	// take the dose, twice: one deduction
	for i := 0; i < 2; i++ {
		resp = api.do(t, http.MethodPost, fmt.Sprintf("/schedule/%s/status", entries[0].ID), map[string]any{"status": "taken"})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}

	resp = api.do(t, http.MethodGet, "/medications", nil)
	medsOut := decode[[]meds.Medication](t, resp)
	require.Len(t, medsOut, 1)
	assert.Equal(t, 29, medsOut[0].CurrentQuantity)

	// refill
	resp = api.do(t, http.MethodPost, "/medications/"+created.ID+"/refill", map[string]any{"amount": 20})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refilled := decode[meds.Medication](t, resp)
	assert.Equal(t, 49, refilled.CurrentQuantity)

	// delete cascades
	resp = api.do(t, http.MethodDelete, "/medications/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/schedule", nil)
	assert.Empty(t, decode[[]meds.ScheduleEntry](t, resp))
}

func TestMedicationValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing name", body: map[string]any{"formType": "pill"}},
		{name: "bad form type", body: map[string]any{"name": "X", "formType": "lozenge"}},
		{name: "negative quantity", body: map[string]any{"name": "X", "formType": "pill", "currentQuantity": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/medications", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRefillRejectsBadAmount(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(t, http.MethodPost, "/medications", map[string]any{
		"name": "Aspirin", "formType": "tablet", "initialQuantity": 30, "currentQuantity": 6,
	})
	created := decode[meds.Medication](t, resp)

	resp = api.do(t, http.MethodPost, "/medications/"+created.ID+"/refill", map[string]any{"amount": 0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/medications/missing/refill", map[string]any{"amount": 5})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardStats(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(t, http.MethodPost, "/medications", map[string]any{
		"name": "Lisinopril", "formType": "tablet", "initialQuantity": 30, "currentQuantity": 6,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decode[map[string]any](t, resp)
	assert.Equal(t, float64(1), stats["activeMeds"])
	assert.Equal(t, float64(1), stats["pendingToday"])
	assert.Equal(t, float64(0), stats["adherence"])

	// 6 of 30 is at 0.2, below the low-stock threshold
	low := stats["lowStock"].([]any)
	assert.Len(t, low, 1)
}

func TestAssistantChat(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{
				"parts": []any{map[string]any{"text": "Take it with food."}},
			}}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer model.Close()

	api := newTestAPI(t, model)

	resp := api.do(t, http.MethodPost, "/assistant/chat", map[string]any{"message": "How should I take metformin?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)
	assert.Equal(t, "Take it with food.", out["reply"])

	resp = api.do(t, http.MethodGet, "/assistant/history", nil)
	history := decode[[]meds.Message](t, resp)
	require.Len(t, history, 2)
	assert.Equal(t, meds.RoleUser, history[0].Role)
	assert.Equal(t, meds.RoleModel, history[1].Role)
}

func TestAssistantFailureLeavesNoPartialTurn(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer model.Close()

	api := newTestAPI(t, model)

	resp := api.do(t, http.MethodPost, "/assistant/chat", map[string]any{"message": "hello?"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/assistant/history", nil)
	assert.Empty(t, decode[[]meds.Message](t, resp))
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)
	resp, err := http.Get(api.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
