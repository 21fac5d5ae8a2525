// Package controller drives one popup session: validate the active tab,
// run the extraction across the tab's frames exactly once, and hand the
// first usable frame result to the display. Every failure is terminal for
// the session and surfaces as display text, never as a raised failure.
package controller

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"jmlee87/pricelens/internal/extract"
	"jmlee87/pricelens/internal/frame"
	"jmlee87/pricelens/logger"
	"jmlee87/pricelens/pkg/errors"
)

// Display messages for the terminal failure paths.
const (
	MsgNoTab      = "No active tab to inspect."
	MsgOffDomain  = "This page is not a supported shopping site."
	MsgNoListings = "No listings found on this page."
)

// focusGrace is how long after opening the advisory focus check fires.
const focusGrace = time.Second

// Tab describes the active browser tab the session targets.
type Tab struct {
	URL string
}

// Controller runs popup sessions.
type Controller struct {
	runner    frame.Runner
	display   Display
	target    *regexp.Regexp
	extractFn frame.ExtractFunc

	// grace is the advisory focus-check delay, overridable in tests.
	grace time.Duration

	log *logger.Logger
}

// New creates a controller. target is the hostname pattern the tab must
// match for extraction to be attempted.
func New(runner frame.Runner, display Display, target *regexp.Regexp, extractFn frame.ExtractFunc) *Controller {
	return &Controller{
		runner:    runner,
		display:   display,
		target:    target,
		extractFn: extractFn,
		grace:     focusGrace,
		log:       logger.ForController(),
	}
}

// validateTab checks that the tab is usable and on the target site.
func (c *Controller) validateTab(tab Tab) *errors.SessionError {
	if tab.URL == "" {
		return errors.NewNavigation(tab.URL, MsgNoTab)
	}

	u, err := url.Parse(tab.URL)
	if err != nil || u.Hostname() == "" {
		return errors.NewNavigation(tab.URL, MsgNoTab)
	}

	if !c.target.MatchString(u.Hostname()) {
		return errors.NewNavigation(tab.URL, MsgOffDomain)
	}

	return nil
}

// usable reports whether a frame result carries renderable listing markup.
func usable(r extract.Result) bool {
	return r.HTML != "" && r.HTML != extract.NoListingsHTML
}

// Open runs one popup session against the tab. The display always receives
// the outcome; the returned error only classifies failures for the caller's
// log. Nothing is retried: a failed session requires reopening the popup.
func (c *Controller) Open(ctx context.Context, tab Tab) *errors.SessionError {
	// Advisory only: the popup closing does not cancel the in-flight run,
	// it just discards the result.
	timer := time.AfterFunc(c.grace, func() {
		if !c.display.Focused() {
			c.log.Debug().Str("tab", tab.URL).Msg("Display lost focus before completion; popup likely dismissed")
		}
	})
	defer timer.Stop()

	if serr := c.validateTab(tab); serr != nil {
		c.display.SetText(serr.Message)
		return serr
	}

	results, err := c.runner.Run(ctx, tab.URL, c.extractFn)
	if err != nil {
		c.display.SetText(err.Error())
		return errors.NewInjection(tab.URL, "failed to run extraction in tab frames", err)
	}

	if len(results) == 0 {
		c.display.SetText(MsgNoListings)
		return errors.NewEmptyResult(tab.URL)
	}

	for _, r := range results {
		if usable(r) {
			c.log.Info().Str("tab", tab.URL).Str("frame", r.URL).Msg("Rendering frame result")
			c.display.SetHTML(r.HTML)
			return nil
		}
	}

	c.display.SetText(MsgNoListings)
	return errors.NewEmptyResult(tab.URL)
}
