package extract

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jmlee87/pricelens/logger"
	"jmlee87/pricelens/pkg/errors"
)

// NoListingsHTML is the sentinel markup emitted when the page parsed cleanly
// but contained no product entries. The controller skips frames carrying it
// when picking a usable frame result.
const NoListingsHTML = "<!-- no listings -->"

// Extractor scrapes a search-results document into normalized listings and
// renders them as a self-contained markup fragment.
type Extractor struct {
	selectors Selectors
	baseURL   string

	titleHandlers []FieldHandler
	linkHandlers  []FieldHandler
}

// New creates an extractor for the given selector configuration. baseURL
// resolves relative listing links.
func New(selectors Selectors, baseURL string) *Extractor {
	e := &Extractor{
		selectors: selectors,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}

	for _, sel := range selectors.Title {
		e.titleHandlers = append(e.titleHandlers, e.textHandler(sel))
	}
	for _, sel := range selectors.Link {
		e.linkHandlers = append(e.linkHandlers, e.hrefHandler(sel))
	}

	return e
}

// applyHandlers tries the handlers in order and returns the first non-empty
// result.
func applyHandlers(s *goquery.Selection, handlers []FieldHandler) string {
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if result := handler(s); result != "" {
			return result
		}
	}
	return ""
}

// textHandler extracts trimmed text, preferring a title attribute when set.
func (e *Extractor) textHandler(selector string) FieldHandler {
	return func(s *goquery.Selection) string {
		sel := s.Find(selector).First()
		if sel.Length() == 0 {
			return ""
		}
		if attr, exists := sel.Attr("title"); exists && attr != "" {
			return strings.TrimSpace(attr)
		}
		return strings.TrimSpace(sel.Text())
	}
}

// hrefHandler extracts an href resolved against the base URL.
func (e *Extractor) hrefHandler(selector string) FieldHandler {
	return func(s *goquery.Selection) string {
		sel := s.Find(selector).First()
		if sel.Length() == 0 {
			return ""
		}
		href, exists := sel.Attr("href")
		if !exists {
			return ""
		}
		return e.resolveURL(strings.TrimSpace(href))
	}
}

// resolveURL makes a listing link absolute.
func (e *Extractor) resolveURL(link string) string {
	if link == "" || strings.Contains(link, "://") {
		return link
	}
	base, err := url.Parse(e.baseURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// findContainers locates the product entries by trying the container
// selectors in order, stopping at the first that yields at least one element.
func (e *Extractor) findContainers(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.selectors.Containers {
		containers := doc.Find(sel)
		if containers.Length() > 0 {
			return containers
		}
	}
	return nil
}

// Extract scrapes the document into normalized listings. Entries without a
// resolvable title and link are dropped. The returned slice is sorted by
// effective price ascending, unpriced listings first.
func (e *Extractor) Extract(doc *goquery.Document) []Listing {
	containers := e.findContainers(doc)
	if containers == nil {
		return nil
	}

	var listings []Listing
	containers.Each(func(_ int, s *goquery.Selection) {
		if listing := e.processListing(s); listing != nil {
			listings = append(listings, *listing)
		}
	})

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].EffectivePrice < listings[j].EffectivePrice
	})

	return listings
}

// processListing normalizes a single product entry, or returns nil when the
// entry lacks a usable title or link.
func (e *Extractor) processListing(s *goquery.Selection) *Listing {
	title := applyHandlers(s, e.titleHandlers)
	if title == "" {
		return nil
	}

	link := applyHandlers(s, e.linkHandlers)
	if link == "" {
		return nil
	}

	listing := &Listing{
		Title:          title,
		URL:            link,
		EffectivePrice: NoPrice,
		Delivery:       e.classifyDelivery(s),
	}

	base, hasPrice := e.basePrice(s)
	if hasPrice {
		listing.EffectivePrice = roundCents(base)
	}

	couponText := e.couponText(s)
	if couponText != "" {
		listing.HasCoupon = true
		if hasPrice && base > 0 {
			listing.EffectivePrice = applyCoupon(base, couponText, s.Text())
		}
	}

	listing.DisplayPrice = formatPrice(listing.EffectivePrice)

	return listing
}

// couponText returns the coupon indicator text, or "" when the listing
// carries no coupon.
func (e *Extractor) couponText(s *goquery.Selection) string {
	for _, sel := range e.selectors.Coupon {
		coupon := s.Find(sel).First()
		if coupon.Length() > 0 {
			return strings.TrimSpace(coupon.Text())
		}
	}
	return ""
}

// Run performs one full extraction pass over the document and renders the
// result fragment. It never panics out to its caller: internal failures are
// recovered and converted into a result whose HTML is a readable error line.
func (e *Extractor) Run(doc *goquery.Document, pageURL string) (result Result) {
	result.URL = pageURL

	defer func() {
		if r := recover(); r != nil {
			logger.Error("%v", errors.NewExtraction(pageURL, "scraping pass failed", fmt.Errorf("%v", r)))
			result.HTML = fmt.Sprintf("<p class=\"extract-error\">extraction failed: %v</p>", r)
		}
	}()

	listings := e.Extract(doc)
	if len(listings) == 0 {
		result.HTML = NoListingsHTML
		return result
	}

	html, err := Render(listings)
	if err != nil {
		logger.Error("render failed for %s: %v", pageURL, err)
		result.HTML = fmt.Sprintf("<p class=\"extract-error\">render failed: %v</p>", err)
		return result
	}

	result.HTML = html
	return result
}
