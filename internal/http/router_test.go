package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "freightdesk/internal/http"
	"freightdesk/internal/infra"
	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/modules/reconciliation"
	"freightdesk/internal/types"
)

type stubVerifier struct{}

// VerifyIDToken treats the raw token as the caller's role.
func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*infra.StaffToken, error) {
	if idToken == "bad" {
		return nil, errors.New("expired")
	}
	return &infra.StaffToken{UID: "uid-" + idToken, Role: idToken}, nil
}

type plans map[types.ID]*ratetable.RateTable

func (p plans) Lookup(_ context.Context, clientID types.ID) (*ratetable.RateTable, error) {
	if t, ok := p[clientID]; ok {
		return t, nil
	}
	return nil, ratetable.ErrNoTableAssigned
}

type memDeliveries struct {
	mu      sync.Mutex
	records map[types.ID]delivery.Record
}

func (m *memDeliveries) Get(_ context.Context, id types.ID) (*delivery.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, delivery.ErrNotFound
	}
	cp := r.Clone()
	return &cp, nil
}

func (m *memDeliveries) Save(_ context.Context, r *delivery.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID.Empty() {
		r.ID = "new-record"
	}
	m.records[r.ID] = r.Clone()
	return nil
}

func (m *memDeliveries) ExistsMinute(_ context.Context, minute string, clientID, excludeID types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]delivery.Record, 0, len(m.records))
	for _, r := range m.records {
		all = append(all, r)
	}
	return delivery.ContainsMinute(all, minute, clientID, excludeID), nil
}

type invalidations struct {
	ids []types.ID
}

func (i *invalidations) Invalidate(_ context.Context, id types.ID) error {
	i.ids = append(i.ids, id)
	return nil
}

type testAPI struct {
	router  *gin.Engine
	repo    *memDeliveries
	tables  *invalidations
	manager *reconciliation.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table := ratetable.Normalize(ratetable.RateTable{
		ID:               "plan",
		MinimumRate:      map[ratetable.ServiceCategory]float64{ratetable.ServiceStandard: 36},
		ExcessWeightRate: map[ratetable.WeightRateClass]float64{ratetable.WeightStandard: 0.55},
	})
	calc := pricing.NewService(pricing.Deps{Plans: plans{"X": &table}})
	repo := &memDeliveries{records: map[types.ID]delivery.Record{
		"a": {ID: "a", MinuteNumber: "001", ClientID: "X", ServiceCategory: ratetable.ServiceStandard},
	}}
	deliveries := delivery.NewService(repo, nil)
	manager := reconciliation.NewManager(reconciliation.Deps{
		NewCalculator: func() reconciliation.Calculator { return calc },
		Submitter:     deliveries,
		Records:       deliveries,
	})
	t.Cleanup(manager.CloseAll)
	tables := &invalidations{}

	return &testAPI{
		router: httptransport.NewRouter(httptransport.RouterDeps{
			Quoter:        calc,
			Deliveries:    deliveries,
			Sessions:      manager,
			Tables:        tables,
			Verifier:      stubVerifier{},
			OverrideRoles: []string{"manager"},
		}),
		repo:    repo,
		tables:  tables,
		manager: manager,
	}
}

func (a *testAPI) do(t *testing.T, method, path, role string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+role)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w, _ := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	api := newTestAPI(t)
	w, _ := api.do(t, http.MethodPost, "/api/freight/quote", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = api.do(t, http.MethodPost, "/api/freight/quote", "bad", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuote(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodPost, "/api/freight/quote", "clerk", map[string]any{
		"client_id": "X", "service_category": "standard", "weight_kg": 15,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "38.75", body["amount"])
	assert.Equal(t, false, body["fallback"])

	w, body = api.do(t, http.MethodPost, "/api/freight/quote", "clerk", map[string]any{
		"client_id": "nobody", "service_category": "standard", "weight_kg": 6,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "50.00", body["amount"])
	assert.Equal(t, true, body["fallback"])
	assert.Contains(t, body["warning"], "no rate table")

	w, _ = api.do(t, http.MethodPost, "/api/freight/quote", "clerk", map[string]any{
		"client_id": "X", "service_category": "standard", "weight_kg": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/freight/quote", "clerk", map[string]any{
		"client_id": "X", "service_category": "doorToDoorInterior", "weight_kg": 1, "city_distance_km": -5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveries(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodGet, "/api/deliveries/minute-check?minute_number=001&client_id=X", "clerk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["exists"])

	w, body = api.do(t, http.MethodGet, "/api/deliveries/minute-check?minute_number=001&client_id=X&exclude_id=a", "clerk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["exists"])

	w, _ = api.do(t, http.MethodGet, "/api/deliveries/minute-check?client_id=X", "clerk", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(t, http.MethodGet, "/api/deliveries/a", "clerk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "001", body["minute_number"])
	assert.Equal(t, "0.00", body["total_freight"])

	w, _ = api.do(t, http.MethodGet, "/api/deliveries/zzz", "clerk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionFlow(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodPost, "/api/freight/sessions", "clerk", map[string]any{
		"draft": map[string]any{
			"minute_number":    "001",
			"client_id":        "X",
			"service_category": "standard",
			"weight_kg":        8,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := body["id"].(string)
	assert.Equal(t, "36.00", body["displayed"])
	assert.Equal(t, "auto_computing", body["state"])
	base := "/api/freight/sessions/" + id

	w, body = api.do(t, http.MethodPatch, base, "clerk", map[string]any{"weight_kg": 15})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "38.75", body["displayed"])

	w, _ = api.do(t, http.MethodPatch, base, "clerk", map[string]any{"weight_kg": -3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPut, base+"/freight", "clerk", map[string]any{"value": "50"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(t, http.MethodPut, base+"/freight", "manager", map[string]any{"value": "fifty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(t, http.MethodPut, base+"/freight", "manager", map[string]any{"value": "50"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "manual_override", body["state"])
	assert.Equal(t, "50.00", body["displayed"])

	w, body = api.do(t, http.MethodPatch, base, "clerk", map[string]any{"weight_kg": 20, "receiver_name": "Ana"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "50.00", body["displayed"])

	w, body = api.do(t, http.MethodPost, base+"/recalculate", "clerk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "41.50", body["displayed"])
	assert.Equal(t, "auto_computing", body["state"])

	w, body = api.do(t, http.MethodPost, base+"/submit", "clerk", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, true, body["needs_confirmation"])

	w, body = api.do(t, http.MethodPost, base+"/submit", "clerk", map[string]any{"confirm_duplicate": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "41.50", body["total_freight"])
	assert.Equal(t, "Ana", body["receiver_name"])

	saved := api.repo.records["new-record"]
	assert.Equal(t, "41.50", saved.TotalFreight.StringFixed(2))

	w, _ = api.do(t, http.MethodGet, base, "clerk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionOpenExistingAndClose(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodPost, "/api/freight/sessions", "clerk", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/freight/sessions", "clerk", map[string]any{"delivery_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := api.do(t, http.MethodPost, "/api/freight/sessions", "clerk", map[string]any{"delivery_id": "a"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := body["id"].(string)

	w, _ = api.do(t, http.MethodDelete, "/api/freight/sessions/"+id, "clerk", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := api.manager.Get(types.ID(id))
	assert.ErrorIs(t, err, reconciliation.ErrSessionNotFound)
}

func TestRateTableCacheInvalidation(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodDelete, "/api/rate-tables/plan/cache", "clerk", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(t, http.MethodDelete, "/api/rate-tables/plan/cache", "manager", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []types.ID{"plan"}, api.tables.ids)
}
