// Package runner launches a persistent Chromium profile, injects the
// stealth init script, seeds the start URL, and drives the dispatcher
// over a workflow's top-level steps. It implements the keep-alive
// state machine: a fatal unignored step failure stops dispatch but
// leaves the browser open until all its pages are closed, only then
// re-raising the error. Grounded on GangsterSamed-agent's
// internal/browser Launcher and the persistent-context wiring in
// internal-browser-manager.go.go, redesigned per the keep-alive
// invariant instead of original_source's close-on-error run().
package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonfriesen/playwright-go-stealth"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/faralocal/examflow/internal/workflow"
)

const (
	defaultViewportWidth  = 1366
	defaultViewportHeight = 768
	defaultLocale         = "en-US"
	defaultTimezone       = "Asia/Tehran"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	keepAlivePollInterval = 500 * time.Millisecond
)

// Config holds the runner's launch parameters, sourced from
// environment variables in cmd/workflow/main.go.
type Config struct {
	ProfileDir     string
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	Locale         string
	Timezone       string
	StartURL       string
}

func (c Config) withDefaults() Config {
	if c.ViewportWidth == 0 {
		c.ViewportWidth = defaultViewportWidth
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = defaultViewportHeight
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	return c
}

// Runner owns the playwright process, the persistent browser context,
// and the active page.
type Runner struct {
	cfg     Config
	log     zerolog.Logger
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
}

// Launch starts playwright and opens a persistent Chromium context at
// cfg.ProfileDir. On a singleton-lock conflict it retries exactly once
// against a directory with a randomized suffix, per the observed
// original behavior.
func Launch(cfg Config, log zerolog.Logger) (*Runner, error) {
	cfg = cfg.withDefaults()

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	opts := persistentContextOptions(cfg)
	ctx, err := pw.Chromium.LaunchPersistentContext(cfg.ProfileDir, opts)
	if err != nil && isLockConflict(err) {
		retryDir := cfg.ProfileDir + "-" + uuid.NewString()[:8]
		log.Warn().Str("original_dir", cfg.ProfileDir).Str("retry_dir", retryDir).Msg("profile directory locked, retrying with fallback")
		ctx, err = pw.Chromium.LaunchPersistentContext(retryDir, opts)
	}
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch persistent context: %w", err)
	}

	var page playwright.Page
	if pages := ctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = ctx.NewPage()
		if err != nil {
			_ = ctx.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("open page: %w", err)
		}
	}

	if err := stealth.Inject(page); err != nil {
		log.Warn().Err(err).Msg("baseline stealth injection failed, continuing with supplemental script only")
	}
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(stealthInitScript)}); err != nil {
		log.Warn().Err(err).Msg("supplemental stealth script failed to install")
	}

	r := &Runner{cfg: cfg, log: log, pw: pw, context: ctx, page: page}

	if cfg.StartURL != "" {
		if _, err := page.Goto(cfg.StartURL); err != nil {
			log.Warn().Err(err).Str("url", cfg.StartURL).Msg("failed to seed start url")
		}
	}
	return r, nil
}

func persistentContextOptions(cfg Config) playwright.BrowserTypeLaunchPersistentContextOptions {
	return playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:          playwright.Bool(cfg.Headless),
		Viewport:          &playwright.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		UserAgent:         playwright.String(cfg.UserAgent),
		AcceptDownloads:   playwright.Bool(true),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            playwright.String(cfg.Locale),
		TimezoneId:        playwright.String(cfg.Timezone),
		IgnoreHttpsErrors: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
}

func isLockConflict(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "singletonlock") || strings.Contains(msg, "profile appears to be in use") || strings.Contains(msg, "target page, context or browser has been closed")
}

// Run drives the dispatcher over steps starting at the page root. On a
// fatal (unignored) failure, dispatch stops but the browser is kept
// open: Run polls every 500ms until all pages in the context are
// closed, and only then returns the error to the caller.
func (r *Runner) Run(steps []workflow.Step) ([]workflow.LogRecord, error) {
	sink := workflow.NewSink()
	dispatcher := workflow.NewDispatcher(sink, r.log)
	scope := workflow.Scope{Page: r.page}

	err := dispatcher.Run(scope, steps, false)
	if err != nil {
		r.log.Error().Err(err).Msg("fatal workflow failure, keeping browser alive until all pages close")
		r.waitForAllPagesClosed()
	}
	return sink.Records(), err
}

func (r *Runner) waitForAllPagesClosed() {
	for {
		if len(r.context.Pages()) == 0 {
			return
		}
		time.Sleep(keepAlivePollInterval)
	}
}

// Close tears down the browser context and the playwright process.
// Callers invoke this only after a normal workflow completion or after
// Run's keep-alive wait has observed zero open pages — never directly
// in response to a step failure (invariant 5).
func (r *Runner) Close() error {
	if r.context != nil {
		if err := r.context.Close(); err != nil {
			return err
		}
	}
	if r.pw != nil {
		return r.pw.Stop()
	}
	return nil
}

// Page exposes the runner's active page.
func (r *Runner) Page() playwright.Page { return r.page }
