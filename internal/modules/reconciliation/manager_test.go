package reconciliation

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

// memDeliveries is a delivery.Repository kept in memory.
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
		r.ID = types.ID("d" + strconv.Itoa(len(m.records)+1))
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

func newDeliveryManager(repo *memDeliveries) *Manager {
	table := ratetable.Normalize(ratetable.RateTable{
		MinimumRate: map[ratetable.ServiceCategory]float64{ratetable.ServiceStandard: 36},
	})
	calc := pricing.NewService(pricing.Deps{Plans: stubPlans{"X": &table}})
	svc := delivery.NewService(repo, nil)
	return NewManager(Deps{
		NewCalculator: func() Calculator { return calc },
		Submitter:     svc,
		Records:       svc,
	})
}

func TestManager_DisplayedValueRoundTrips(t *testing.T) {
	repo := &memDeliveries{records: map[types.ID]delivery.Record{}}
	m := newDeliveryManager(repo)
	ctx := context.Background()

	s, err := m.Open(ctx, OpenCommand{Draft: draftRecord(8)})
	require.NoError(t, err)
	_, err = s.EditFreight("123.456")
	require.NoError(t, err)

	out, err := s.Submit(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, out.Record)

	// Reopening the saved record seeds the same value without recomputing.
	again, err := m.Open(ctx, OpenCommand{DeliveryID: out.Record.ID})
	require.NoError(t, err)
	v := again.View()
	assert.Equal(t, "123.46", v.Displayed.StringFixed(2))
	assert.Nil(t, v.LastComputed)
	assert.Equal(t, StateAutoComputing, v.State)
}

func TestManager_DuplicateMinuteFlow(t *testing.T) {
	repo := &memDeliveries{records: map[types.ID]delivery.Record{
		"a": {ID: "a", MinuteNumber: "001", ClientID: "X", ServiceCategory: ratetable.ServiceStandard},
	}}
	m := newDeliveryManager(repo)
	ctx := context.Background()

	s, err := m.Open(ctx, OpenCommand{Draft: draftRecord(8)})
	require.NoError(t, err)

	out, err := s.Submit(ctx, false)
	require.NoError(t, err)
	assert.True(t, out.NeedsConfirmation)

	out, err = s.Submit(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.Equal(t, "36.00", out.Record.TotalFreight.StringFixed(2))
	assert.Len(t, repo.records, 2)

	// Editing "a" itself never flags its own minute number.
	edit, err := m.Open(ctx, OpenCommand{DeliveryID: "a"})
	require.NoError(t, err)
	_, err = edit.ApplyEdit(ctx, Edit{MinuteNumber: ptr("777")})
	require.NoError(t, err)
	out, err = edit.Submit(ctx, false)
	require.NoError(t, err)
	assert.False(t, out.NeedsConfirmation)
}

func TestManager_OpenUnknownDelivery(t *testing.T) {
	m := newDeliveryManager(&memDeliveries{records: map[types.ID]delivery.Record{}})
	_, err := m.Open(context.Background(), OpenCommand{DeliveryID: "nope"})
	assert.ErrorIs(t, err, delivery.ErrNotFound)
	assert.ErrorIs(t, m.Close("nope"), ErrSessionNotFound)
}

func TestManager_SessionsRateAgainstTheirOwnSnapshot(t *testing.T) {
	source := &mutablePlans{rate: 36}
	lookup := ratetable.NewService(source, nil, nil)
	base := pricing.NewService(pricing.Deps{})
	m := NewManager(Deps{
		NewCalculator: func() Calculator { return base.WithPlans(ratetable.NewSnapshot(lookup)) },
		Submitter:     &fakeSubmitter{},
		Records:       recordSource{},
	})
	defer m.CloseAll()
	ctx := context.Background()

	first, err := m.Open(ctx, OpenCommand{Draft: draftRecord(8)})
	require.NoError(t, err)
	assertDisplayed(t, "36.00", first.View())

	source.set(40)

	v, err := first.Recalculate(ctx)
	require.NoError(t, err)
	assertDisplayed(t, "36.00", v)

	second, err := m.Open(ctx, OpenCommand{Draft: draftRecord(8)})
	require.NoError(t, err)
	assertDisplayed(t, "40.00", second.View())
}

// mutablePlans is a ratetable.TableSource whose single table can be edited.
type mutablePlans struct {
	mu   sync.Mutex
	rate float64
}

func (p *mutablePlans) set(rate float64) {
	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()
}

func (p *mutablePlans) ClientTableID(_ context.Context, clientID types.ID) (types.ID, error) {
	if clientID != "X" {
		return "", ratetable.ErrNoTableAssigned
	}
	return "plan", nil
}

func (p *mutablePlans) Get(_ context.Context, id types.ID) (*ratetable.RateTable, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &ratetable.RateTable{
		ID:          id,
		MinimumRate: map[ratetable.ServiceCategory]float64{ratetable.ServiceStandard: p.rate},
	}, nil
}
