package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NoPrice is the sentinel effective price for listings without a parsable
// price. It sorts ahead of every real price so unpriced listings lead the
// rendered list; it is never treated as "free".
const NoPrice float64 = -1

// NoPriceDisplay is the display string for unpriced listings.
const NoPriceDisplay = "No Price"

var (
	youPayRe  = regexp.MustCompile(`(?i)you pay\s*\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	percentRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%`)
	dollarRe  = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	numberRe  = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]{1,2})?`)
)

// parseAmount extracts the first currency amount from text.
func parseAmount(text string) (float64, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// basePrice assembles the pre-coupon price of a listing. The split
// whole/fraction sub-elements are preferred; the combined price elements are
// a best-effort fallback.
func (e *Extractor) basePrice(s *goquery.Selection) (float64, bool) {
	whole := strings.TrimSpace(s.Find(e.selectors.PriceWhole).First().Text())
	if whole != "" {
		fraction := strings.TrimSpace(s.Find(e.selectors.PriceFraction).First().Text())
		text := whole
		if fraction != "" {
			text = strings.TrimRight(whole, ".") + "." + fraction
		}
		if v, ok := parseAmount(text); ok {
			return v, true
		}
	}

	for _, sel := range e.selectors.Price {
		text := strings.TrimSpace(s.Find(sel).First().Text())
		if text == "" {
			continue
		}
		if v, ok := parseAmount(text); ok {
			return v, true
		}
	}

	return 0, false
}

// applyCoupon resolves the post-coupon price. Precedence: an explicit
// "you pay $X" phrase anywhere in the listing text is authoritative, then a
// percentage-off match, then a dollar-off match floored at zero. Coupon text
// that matches none of these leaves the price unchanged.
func applyCoupon(base float64, couponText, itemText string) float64 {
	if m := youPayRe.FindStringSubmatch(itemText); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return v
		}
	}

	if m := percentRe.FindStringSubmatch(couponText); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return roundCents(base * (1 - pct/100))
		}
	}

	if m := dollarRe.FindStringSubmatch(couponText); m != nil {
		if off, ok := parseAmount(m[1]); ok {
			return math.Max(0, roundCents(base-off))
		}
	}

	return base
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatPrice renders an effective price for the price column.
func formatPrice(v float64) string {
	if v < 0 {
		return NoPriceDisplay
	}
	return fmt.Sprintf("$%.2f", v)
}
