package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var withinHoursRe = regexp.MustCompile(`within\s+\d+\s+hours?`)

// classifyDelivery categorizes a listing's shipping speed. The dedicated
// delivery selectors are tried first; the first element whose text matches a
// phrase decides the category and stops the search. When no dedicated
// element matches, the full listing text is scanned against the broader
// fallback phrase sets. Listings matching neither stay uncategorized.
func (e *Extractor) classifyDelivery(s *goquery.Selection) DeliveryCategory {
	for _, sel := range e.selectors.Delivery {
		found := DeliveryNone
		s.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := strings.ToLower(el.Text())
			if text == "" {
				return true
			}
			if containsAny(text, e.selectors.TodayPhrases) || withinHoursRe.MatchString(text) {
				found = DeliveryToday
				return false
			}
			if containsAny(text, e.selectors.TomorrowPhrases) {
				found = DeliveryTomorrow
				return false
			}
			return true
		})
		if found != DeliveryNone {
			return found
		}
	}

	full := strings.ToLower(s.Text())
	if containsAny(full, e.selectors.TodayFallbackPhrases) {
		return DeliveryToday
	}
	if containsAny(full, e.selectors.TomorrowFallbackPhrases) {
		return DeliveryTomorrow
	}

	return DeliveryNone
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
