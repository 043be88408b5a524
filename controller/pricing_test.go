package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embroidery-backend/model"
)

var (
	now       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tomorrow  = now.Add(24 * time.Hour)
	yesterday = now.Add(-24 * time.Hour)
)

func TestEffectivePrice_EscalationBeforeCutoff(t *testing.T) {
	got := EffectivePrice(100, model.PriceUpdateEscalation, 25, tomorrow, now)
	assert.Equal(t, 125.0, got)
}

func TestEffectivePrice_ReductionBeforeCutoff(t *testing.T) {
	got := EffectivePrice(100, model.PriceUpdateReduction, 25, tomorrow, now)
	assert.Equal(t, 75.0, got)
}

func TestEffectivePrice_NothingBeforeCutoff(t *testing.T) {
	got := EffectivePrice(100, model.PriceUpdateNothing, 25, tomorrow, now)
	assert.Equal(t, 100.0, got)
}

func TestEffectivePrice_AfterCutoffIgnoresAdjustment(t *testing.T) {
	for _, kind := range []string{
		model.PriceUpdateEscalation,
		model.PriceUpdateReduction,
		model.PriceUpdateNothing,
	} {
		assert.Equal(t, 100.0, EffectivePrice(100, kind, 50, yesterday, now), kind)
	}
}

func TestEffectivePrice_AtCutoffInstant(t *testing.T) {
	// exactly at the cutoff the adjustment no longer applies
	got := EffectivePrice(100, model.PriceUpdateEscalation, 50, now, now)
	assert.Equal(t, 100.0, got)
}

func TestProductPrice_FreebieIsZero(t *testing.T) {
	p := &model.Product{
		Price:             100,
		IsFreebie:         true,
		PriceUpdateType:   model.PriceUpdateEscalation,
		PricePercentage:   50,
		PriceValidityDate: tomorrow,
	}
	assert.Equal(t, 0.0, ProductPrice(p, now))
}

func TestResolveLineItems_SumsEffectivePrices(t *testing.T) {
	db := newTestDB(t)

	p1 := seedProduct(t, db, model.Product{Name: "Rose", Price: 40, PriceUpdateType: model.PriceUpdateNothing})
	p2 := seedProduct(t, db, model.Product{Name: "Peacock", Price: 60, PriceUpdateType: model.PriceUpdateNothing})

	items, total, err := ResolveLineItems(db, []model.LineItem{
		{ProductID: p1.ID},
		{ProductID: p2.ID},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 100.0, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Rose", items[0].Name)
	assert.Equal(t, 40.0, items[0].Price)
	assert.Equal(t, "Peacock", items[1].Name)
	assert.Equal(t, 60.0, items[1].Price)
}

func TestResolveLineItems_IgnoresClientPrices(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, model.Product{Name: "Rose", Price: 40, PriceUpdateType: model.PriceUpdateNothing})

	// the client claims the product costs 1
	_, total, err := ResolveLineItems(db, []model.LineItem{
		{ProductID: p.ID, Price: 1},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 40.0, total)
}

func TestResolveLineItems_UnknownProduct(t *testing.T) {
	db := newTestDB(t)

	_, _, err := ResolveLineItems(db, []model.LineItem{{ProductID: 9999}}, now)
	assert.Error(t, err)
}
