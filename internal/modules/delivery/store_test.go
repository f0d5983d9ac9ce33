package delivery

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/testutil"
)

func TestStore_SaveGetRoundTrip(t *testing.T) {
	db := testutil.SetupDB(t, "deliveries")
	ctx := context.Background()
	store := NewStore(db)

	r := &Record{
		MinuteNumber:      "001",
		ClientID:          "X",
		ServiceCategory:   ratetable.ServiceDoorToDoorInterior,
		CargoCategory:     pricing.CargoPerishable,
		WeightKg:          50.5,
		DeclaredValue:     1000,
		CityID:            "campinas",
		AdditionalCharges: []float64{10, 4.5},
		HasDelivery:       true,
		ReceiverName:      "Ana",
		TotalFreight:      decimal.RequireFromString("248.37"),
	}
	require.NoError(t, store.Save(ctx, r))
	require.NotEmpty(t, r.ID)
	require.False(t, r.CreatedAt.IsZero())

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "248.37", got.TotalFreight.StringFixed(2))
	assert.Equal(t, r.CityID, got.CityID)
	assert.Equal(t, []float64{10, 4.5}, got.AdditionalCharges)
	assert.Equal(t, pricing.CargoPerishable, got.CargoCategory)

	got.Notes = "fixed receiver"
	got.TotalFreight = decimal.RequireFromString("250")
	require.NoError(t, store.Save(ctx, got))
	again, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed receiver", again.Notes)
	assert.Equal(t, "250.00", again.TotalFreight.StringFixed(2))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ExistsMinute(t *testing.T) {
	db := testutil.SetupDB(t, "deliveries")
	ctx := context.Background()
	store := NewStore(db)

	a := &Record{MinuteNumber: "001", ClientID: "X", ServiceCategory: ratetable.ServiceStandard}
	b := &Record{MinuteNumber: "001", ClientID: "X", ServiceCategory: ratetable.ServiceStandard}
	c := &Record{MinuteNumber: "002", ClientID: "X", ServiceCategory: ratetable.ServiceStandard}
	for _, r := range []*Record{a, b, c} {
		require.NoError(t, store.Save(ctx, r))
	}

	exists, err := store.ExistsMinute(ctx, "001", "X", a.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsMinute(ctx, "002", "X", c.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.ExistsMinute(ctx, "001", "Y", "")
	require.NoError(t, err)
	assert.False(t, exists)
}
