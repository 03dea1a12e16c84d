package workflow

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	linkLoadTimeout  = 18 * time.Second
	linkLoadFallback = 2 * time.Second
)

// resolveLocator implements the locator resolver (§4.B): build a
// locator on the root, optionally filter by text, bounds-check the
// index, wait for visibility, scroll into view, and return the
// element handle.
func resolveLocator(root Root, cssSelector, textFilter string, index int, timeoutMS int) (playwright.Locator, error) {
	loc := root.ResolveLocator(cssSelector)
	if textFilter != "" {
		loc = loc.Filter(playwright.LocatorFilterOptions{
			HasText: textFilter,
		})
	}

	count, err := loc.Count()
	if err != nil {
		return nil, wrapDriverErr("count locator", err)
	}
	if count == 0 {
		return nil, newSelectorErr(cssSelector, "no matches")
	}
	if index < 0 || index >= count {
		return nil, newSelectorErr(cssSelector, "index out of range")
	}

	target := loc.Nth(index)
	if timeoutMS <= 0 {
		timeoutMS = defaultTimeoutMS
	}
	if err := target.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeoutMS)),
	}); err != nil {
		return nil, newTimeoutErr("wait for visible", (time.Duration(timeoutMS) * time.Millisecond).String())
	}
	if err := target.ScrollIntoViewIfNeeded(); err != nil {
		return nil, wrapDriverErr("scroll into view", err)
	}
	return target, nil
}

// clickWithLinkAwareness re-detects the element's href before issuing
// a click; if present, waits for network-idle after clicking, falling
// back to a short sleep if that wait itself fails.
func clickWithLinkAwareness(page playwright.Page, loc playwright.Locator) error {
	href, _ := loc.GetAttribute("href")

	if err := loc.Click(); err != nil {
		return wrapDriverErr("click", err)
	}

	if href != "" {
		if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateNetworkidle,
			Timeout: playwright.Float(float64(linkLoadTimeout.Milliseconds())),
		}); err != nil {
			time.Sleep(linkLoadFallback)
		}
	}
	return nil
}
