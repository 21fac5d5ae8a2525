package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmlee87/pricelens/helpers"
	"jmlee87/pricelens/internal/controller"
	"jmlee87/pricelens/internal/extract"
	"jmlee87/pricelens/internal/filter"
	"jmlee87/pricelens/internal/frame"
)

const searchResultsPage = `<html><body>
<div class="s-main-slot">
	<div data-component-type="s-search-result" data-asin="B001">
		<h2><a class="a-link-normal" href="/dp/B001"><span>Cordless Drill</span></a></h2>
		<span class="a-price"><span class="a-price-whole">40</span><span class="a-price-fraction">00</span></span>
		<span class="s-coupon-unclipped">Save 20% with coupon</span>
		<div data-cy="delivery-recipe">Get it Today by 9 PM</div>
	</div>
	<div data-component-type="s-search-result" data-asin="B002">
		<h2><a class="a-link-normal" href="/dp/B002"><span>Backordered Widget</span></a></h2>
	</div>
	<div data-component-type="s-search-result" data-asin="B003">
		<h2><a class="a-link-normal" href="/dp/B003"><span>Hand Saw</span></a></h2>
		<span class="a-price"><span class="a-price-whole">12</span><span class="a-price-fraction">50</span></span>
		<div data-cy="delivery-recipe">Get it Tomorrow</div>
	</div>
	<div data-asin="B004"><!-- sponsored shell without title or link --></div>
</div>
</body></html>`

// TestPopupSessionEndToEnd walks the full path of one popup session: fetch,
// per-frame extraction, frame selection, rendering, and row filtering over
// the rendered output.
func TestPopupSessionEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(searchResultsPage))
	}))
	defer server.Close()

	extractor := extract.New(extract.DefaultSelectors(), server.URL)
	runner := frame.NewHTTPRunner(nil, "", 0, 4, helpers.FetchWithRandomHeaders)

	var out bytes.Buffer
	display := controller.NewWriterDisplay(&out)

	// The test server answers on a loopback host
	target := regexp.MustCompile(`^127\.0\.0\.1$`)

	ctrl := controller.New(runner, display, target, func(doc *goquery.Document, frameURL string) extract.Result {
		return extractor.Run(doc, frameURL)
	})

	serr := ctrl.Open(context.Background(), controller.Tab{URL: server.URL + "/s?k=tools"})
	require.Nil(t, serr)

	fragment := out.String()
	require.NotEmpty(t, fragment)

	// Unpriced first, then ascending by post-coupon price:
	// B002 (no price), B003 ($12.50), B001 ($40 - 20% = $32.00)
	titles, err := filter.VisibleTitles(fragment)
	require.NoError(t, err)
	assert.Equal(t, []string{"Backordered Widget", "Hand Saw", "Cordless Drill"}, titles)

	assert.Contains(t, fragment, "$32.00", "coupon applies before sorting and rendering")
	assert.Contains(t, fragment, extract.NoPriceDisplay)
	assert.NotContains(t, fragment, "B004", "entries without title and link never render")

	// Text filter narrows to matching rows
	filtered, err := filter.Apply(fragment, filter.State{Query: "saw"})
	require.NoError(t, err)
	titles, err = filter.VisibleTitles(filtered)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hand Saw"}, titles)

	// Delivery toggles OR-compose; the unpriced, uncategorized row hides
	filtered, err = filter.Apply(fragment, filter.State{Today: true, Tomorrow: true})
	require.NoError(t, err)
	titles, err = filter.VisibleTitles(filtered)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hand Saw", "Cordless Drill"}, titles)

	// Clearing the filters restores the full sorted order
	restored, err := filter.Apply(filtered, filter.Clear)
	require.NoError(t, err)
	titles, err = filter.VisibleTitles(restored)
	require.NoError(t, err)
	assert.Equal(t, []string{"Backordered Widget", "Hand Saw", "Cordless Drill"}, titles)
}

// TestStartupFilterNarrowsRenderedFragment verifies the env-driven filter
// state is applied to the fragment before it reaches the display, while
// plain text messages pass through unfiltered.
func TestStartupFilterNarrowsRenderedFragment(t *testing.T) {
	listings := []extract.Listing{
		{Title: "Unpriced Gadget", URL: "https://example.com/dp/A", DisplayPrice: extract.NoPriceDisplay, EffectivePrice: extract.NoPrice},
		{Title: "Fast Charger", URL: "https://example.com/dp/B", DisplayPrice: "$9.99", EffectivePrice: 9.99, Delivery: extract.DeliveryToday},
		{Title: "Slow Cooker", URL: "https://example.com/dp/C", DisplayPrice: "$24.00", EffectivePrice: 24, Delivery: extract.DeliveryTomorrow},
	}
	fragment, err := extract.Render(listings)
	require.NoError(t, err)

	var out bytes.Buffer
	display := filteredDisplay{
		Display: controller.NewWriterDisplay(&out),
		state:   filter.State{Today: true},
	}

	display.SetHTML(fragment)

	titles, err := filter.VisibleTitles(out.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fast Charger"}, titles)

	out.Reset()
	display.SetText(controller.MsgNoListings)
	assert.Contains(t, out.String(), controller.MsgNoListings)
}

// TestPopupSessionOffDomain verifies that an off-target tab short-circuits
// before any fetch happens.
func TestPopupSessionOffDomain(t *testing.T) {
	extractor := extract.New(extract.DefaultSelectors(), "https://www.amazon.com")

	var out bytes.Buffer
	display := controller.NewWriterDisplay(&out)
	target := regexp.MustCompile(`(^|\.)amazon\.com$`)

	fetchCalled := false
	runner := frame.NewHTTPRunner(nil, "", 0, 4, func(string) (io.Reader, error) {
		fetchCalled = true
		return nil, errors.New("unreachable")
	})

	ctrl := controller.New(runner, display, target,
		func(doc *goquery.Document, frameURL string) extract.Result {
			return extractor.Run(doc, frameURL)
		},
	)

	serr := ctrl.Open(context.Background(), controller.Tab{URL: "https://news.example.org/article"})
	require.NotNil(t, serr)
	assert.False(t, fetchCalled)
	assert.Contains(t, out.String(), controller.MsgOffDomain)
}
