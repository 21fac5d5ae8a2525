package extract

import "github.com/PuerkitoBio/goquery"

// DeliveryCategory is the coarse shipping-speed classification of a listing.
type DeliveryCategory int

const (
	DeliveryNone DeliveryCategory = iota
	DeliveryToday
	DeliveryTomorrow
)

// String returns the label used in the rendered delivery column.
func (d DeliveryCategory) String() string {
	switch d {
	case DeliveryToday:
		return "Today"
	case DeliveryTomorrow:
		return "Tomorrow"
	default:
		return ""
	}
}

// Listing represents one normalized product entry scraped from a results page.
type Listing struct {
	Title          string           `json:"title"`
	URL            string           `json:"url"`
	DisplayPrice   string           `json:"display_price"`
	EffectivePrice float64          `json:"effective_price"`
	HasCoupon      bool             `json:"has_coupon"`
	Delivery       DeliveryCategory `json:"delivery"`
}

// Today reports whether the listing ships same-day.
func (l Listing) Today() bool { return l.Delivery == DeliveryToday }

// Tomorrow reports whether the listing ships next-day.
func (l Listing) Tomorrow() bool { return l.Delivery == DeliveryTomorrow }

// Result is the per-frame output of one extraction run.
type Result struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// FieldHandler extracts a single field from a listing selection.
// Handlers are tried in order; the first non-empty result wins.
type FieldHandler func(*goquery.Selection) string

// Selectors is the selector and phrase configuration for one target site.
// The ordered lists are fallback chains: earlier entries are preferred,
// later entries tolerate markup drift on the host site.
type Selectors struct {
	// Containers locates product entries; the first selector that yields
	// at least one element is used.
	Containers []string

	Title []string
	Link  []string

	// Split price sub-elements, tried before the combined price element.
	PriceWhole    string
	PriceFraction string
	Price         []string

	Coupon []string

	// Delivery badge candidates, checked before the whole-text phrase scan.
	Delivery []string

	// Phrase sets for delivery classification. The element-level sets match
	// against the delivery badge text, the fallback sets against the full
	// listing text.
	TodayPhrases            []string
	TomorrowPhrases         []string
	TodayFallbackPhrases    []string
	TomorrowFallbackPhrases []string
}
