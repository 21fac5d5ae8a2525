package extract

// DefaultSelectors returns the selector configuration for the target
// shopping site's search-results page. These lists are configuration data:
// the host markup drifts, so adapting them is expected maintenance, not a
// code change.
func DefaultSelectors() Selectors {
	return Selectors{
		Containers: []string{
			"div.s-main-slot div[data-component-type='s-search-result']",
			"div.s-result-list > div[data-asin]",
			"div[data-asin][data-index]",
		},
		Title: []string{
			"h2 a span",
			"h2 span.a-text-normal",
			"span.a-size-medium.a-text-normal",
			"span.a-size-base-plus",
		},
		Link: []string{
			"h2 a.a-link-normal",
			"a.a-link-normal.s-no-outline",
			"a.a-link-normal",
		},
		PriceWhole:    "span.a-price:not(.a-text-price) span.a-price-whole",
		PriceFraction: "span.a-price:not(.a-text-price) span.a-price-fraction",
		Price: []string{
			"span.a-price:not(.a-text-price) span.a-offscreen",
			"span.a-color-price",
		},
		Coupon: []string{
			"span.s-coupon-unclipped",
			"span[data-component-type='s-coupon-component']",
			"span.couponBadge",
		},
		Delivery: []string{
			"div[data-cy='delivery-recipe']",
			"div.udm-primary-delivery-message",
			"span[aria-label*='delivery']",
			"div.a-row.a-size-base.a-color-secondary span.a-color-base.a-text-bold",
		},
		TodayPhrases: []string{
			"today",
			"same day",
		},
		TomorrowPhrases: []string{
			"tomorrow",
			"next day",
		},
		TodayFallbackPhrases: []string{
			"get it today",
			"delivery today",
			"same-day delivery",
		},
		TomorrowFallbackPhrases: []string{
			"get it tomorrow",
			"delivery tomorrow",
			"next-day delivery",
			"1-day delivery",
		},
	}
}
