package city

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/types"
)

type memRepo struct {
	cities  map[types.ID]*City
	updates map[types.ID]float64
}

func (m *memRepo) Get(_ context.Context, id types.ID) (*City, error) {
	c, ok := m.cities[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) UpdateDistance(_ context.Context, id types.ID, km float64) error {
	if m.updates == nil {
		m.updates = map[types.ID]float64{}
	}
	m.updates[id] = km
	return nil
}

type fakeRouter struct {
	km          float64
	err         error
	destination string
	calls       int
}

func (f *fakeRouter) DistanceKm(_ context.Context, _, destination string) (float64, error) {
	f.calls++
	f.destination = destination
	return f.km, f.err
}

func km(v float64) *float64 { return &v }

func TestGet(t *testing.T) {
	repo := &memRepo{cities: map[types.ID]*City{
		"campinas": {ID: "campinas", Name: "Campinas", State: "SP", DistanceKm: km(20)},
	}}
	svc := NewService(repo, &fakeRouter{}, "depot", nil)

	c, err := svc.Get(context.Background(), "campinas")
	require.NoError(t, err)
	assert.Equal(t, "Campinas, SP", c.Address())
	require.NotNil(t, c.DistanceKm)
	assert.Equal(t, 20.0, *c.DistanceKm)

	_, err = svc.Get(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDistanceKm(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{cities: map[types.ID]*City{
		"campinas": {ID: "campinas", Name: "Campinas", State: "SP", DistanceKm: km(20)},
		"jundiai":  {ID: "jundiai", Name: "Jundiaí", State: "SP"},
	}}
	router := &fakeRouter{km: 58.456}
	svc := NewService(repo, router, "São Paulo, SP", nil)

	got, ok, err := svc.DistanceKm(ctx, "campinas")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20.0, got)
	assert.Zero(t, router.calls, "stored distance must not hit the router")

	got, ok, err = svc.DistanceKm(ctx, "jundiai")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 58.46, got)
	assert.Equal(t, "Jundiaí, SP", router.destination)
	assert.Equal(t, 58.46, repo.updates["jundiai"])

	_, ok, err = svc.DistanceKm(ctx, "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDistanceKm_WithoutRouter(t *testing.T) {
	repo := &memRepo{cities: map[types.ID]*City{"x": {ID: "x", Name: "X"}}}
	svc := NewService(repo, nil, "", nil)

	_, ok, err := svc.DistanceKm(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDistanceKm_RouterError(t *testing.T) {
	repo := &memRepo{cities: map[types.ID]*City{"x": {ID: "x", Name: "X"}}}
	svc := NewService(repo, &fakeRouter{err: errors.New("denied")}, "depot", nil)

	_, ok, err := svc.DistanceKm(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, repo.updates)
}
