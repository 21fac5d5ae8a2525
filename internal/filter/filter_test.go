package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmlee87/pricelens/internal/extract"
)

func renderedFragment(t *testing.T) string {
	t.Helper()
	listings := []extract.Listing{
		{Title: "Unpriced Gadget", URL: "https://example.com/dp/A", DisplayPrice: extract.NoPriceDisplay, EffectivePrice: extract.NoPrice},
		{Title: "Fast Charger", URL: "https://example.com/dp/B", DisplayPrice: "$9.99", EffectivePrice: 9.99, Delivery: extract.DeliveryToday},
		{Title: "Slow Cooker", URL: "https://example.com/dp/C", DisplayPrice: "$24.00", EffectivePrice: 24, Delivery: extract.DeliveryTomorrow},
	}
	html, err := extract.Render(listings)
	require.NoError(t, err)
	return html
}

func TestMatchRowTextFilter(t *testing.T) {
	testCases := []struct {
		name   string
		query  string
		expect bool
	}{
		{"empty query matches", "", true},
		{"case-insensitive substring", "fast", true},
		{"exact", "Fast Charger", true},
		{"no match", "cooker", false},
	}

	for _, tc := range testCases {
		got := MatchRow("Fast Charger", true, false, State{Query: tc.query})
		assert.Equal(t, tc.expect, got, tc.name)
	}
}

func TestMatchRowDeliveryOR(t *testing.T) {
	both := State{Today: true, Tomorrow: true}

	// With both toggles active, Today rows and Tomorrow rows pass,
	// uncategorized rows fail.
	assert.True(t, MatchRow("x", true, false, both))
	assert.True(t, MatchRow("x", false, true, both))
	assert.False(t, MatchRow("x", false, false, both))

	// A single active toggle constrains to that category
	todayOnly := State{Today: true}
	assert.True(t, MatchRow("x", true, false, todayOnly))
	assert.False(t, MatchRow("x", false, true, todayOnly))

	// No active toggle leaves delivery unconstrained
	assert.True(t, MatchRow("x", false, false, State{}))
}

func TestMatchRowComposesBothTests(t *testing.T) {
	state := State{Query: "charger", Today: true}
	assert.True(t, MatchRow("Fast Charger", true, false, state))
	assert.False(t, MatchRow("Fast Charger", false, false, state), "text passes but delivery fails")
	assert.False(t, MatchRow("Slow Cooker", true, false, state), "delivery passes but text fails")
}

func TestApplyHidesAndRestoresRows(t *testing.T) {
	fragment := renderedFragment(t)

	filtered, err := Apply(fragment, State{Query: "charger"})
	require.NoError(t, err)

	visible, err := VisibleTitles(filtered)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fast Charger"}, visible)

	// Clearing restores the original row set in the original order
	cleared, err := Apply(filtered, Clear)
	require.NoError(t, err)

	visible, err = VisibleTitles(cleared)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unpriced Gadget", "Fast Charger", "Slow Cooker"}, visible)
}

func TestApplyDeliveryToggles(t *testing.T) {
	fragment := renderedFragment(t)

	filtered, err := Apply(fragment, State{Today: true, Tomorrow: true})
	require.NoError(t, err)

	visible, err := VisibleTitles(filtered)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fast Charger", "Slow Cooker"}, visible, "uncategorized rows are hidden when any toggle is active")
}

func TestApplyIsIdempotent(t *testing.T) {
	fragment := renderedFragment(t)
	state := State{Query: "o", Tomorrow: true}

	once, err := Apply(fragment, state)
	require.NoError(t, err)
	twice, err := Apply(once, state)
	require.NoError(t, err)

	visOnce, err := VisibleTitles(once)
	require.NoError(t, err)
	visTwice, err := VisibleTitles(twice)
	require.NoError(t, err)
	assert.Equal(t, visOnce, visTwice)
}

func TestApplyPreservesRowsAndOrder(t *testing.T) {
	fragment := renderedFragment(t)

	filtered, err := Apply(fragment, State{Query: "no such listing"})
	require.NoError(t, err)

	// Filtering only toggles a presentation class; nothing is removed
	visible, err := VisibleTitles(filtered)
	require.NoError(t, err)
	assert.Empty(t, visible)

	restored, err := Apply(filtered, Clear)
	require.NoError(t, err)
	visible, err = VisibleTitles(restored)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unpriced Gadget", "Fast Charger", "Slow Cooker"}, visible)
}
