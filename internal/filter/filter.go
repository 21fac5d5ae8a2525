// Package filter re-evaluates row visibility over an already-rendered
// summary fragment. Rows are never removed or re-ordered; a failing row is
// hidden by a presentation class and restored the same way, so applying the
// same state twice yields the same visible set.
package filter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HiddenClass is the presentation class toggled on rows that fail the
// current filter state.
const HiddenClass = "row-hidden"

// rowSelector matches the listing rows the extractor renders.
const rowSelector = "tr.listing-row"

// State is the current filter selection: a free-text query and the two
// delivery toggles.
type State struct {
	Query    string
	Today    bool
	Tomorrow bool
}

// Clear is the zero state; applying it restores every row.
var Clear = State{}

// MatchRow evaluates one row against the state. The text test is a
// case-insensitive substring match on the row's link text; the delivery test
// is OR-composed across the active toggles and does not constrain when no
// toggle is active. A row is shown only when it passes both.
func MatchRow(linkText string, today, tomorrow bool, state State) bool {
	query := strings.TrimSpace(strings.ToLower(state.Query))
	if query != "" && !strings.Contains(strings.ToLower(linkText), query) {
		return false
	}

	if state.Today || state.Tomorrow {
		matched := (state.Today && today) || (state.Tomorrow && tomorrow)
		if !matched {
			return false
		}
	}

	return true
}

// Apply rewrites the fragment with the hidden class set on every row that
// fails the state. The row order and content are untouched.
func Apply(fragment string, state State) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		linkText := row.Find("td.title-cell a").Text()
		today := row.AttrOr("data-today", "false") == "true"
		tomorrow := row.AttrOr("data-tomorrow", "false") == "true"

		if MatchRow(linkText, today, tomorrow, state) {
			row.RemoveClass(HiddenClass)
		} else {
			row.AddClass(HiddenClass)
		}
	})

	return doc.Find("body").Html()
}

// VisibleTitles returns the link text of rows not hidden by the current
// classes, in document order.
func VisibleTitles(fragment string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	var titles []string
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		if row.HasClass(HiddenClass) {
			return
		}
		titles = append(titles, strings.TrimSpace(row.Find("td.title-cell a").Text()))
	})

	return titles, nil
}
