package workflow

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// execGoto navigates to value|url and resets currentFrame to nil.
func execGoto(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	url := step.GotoURL()
	if url == "" {
		return scope, newConfigErr("goto", "url")
	}
	d.log.Info().Str("url", url).Msg("navigating")
	if _, err := scope.Page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(step.Timeout)),
	}); err != nil {
		return scope, wrapDriverErr("goto", err)
	}
	return scope.AfterGoto(), nil
}

// execRefresh reloads the current page. currentFrame is intentionally
// NOT reset — callers must issue main_frame explicitly afterward.
func execRefresh(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	if _, err := scope.Page.Reload(playwright.PageReloadOptions{
		Timeout: playwright.Float(float64(step.Timeout)),
	}); err != nil {
		return scope, wrapDriverErr("refresh", err)
	}
	return scope, nil
}

// execUseLastTab brings the most recently opened page to the front;
// a no-op if only one page exists.
func execUseLastTab(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	pages := scope.Page.Context().Pages()
	if len(pages) <= 1 {
		return scope, nil
	}
	last := pages[len(pages)-1]
	if err := last.BringToFront(); err != nil {
		return scope, wrapDriverErr("bring to front", err)
	}
	next := scope
	next.Page = last
	return next.WithMainFrame(), nil
}

// execFrame switches to a subframe using exactly one of selector
// (frame-locator proxy), name, url (substring match), or index
// (position in the flat frame list).
func execFrame(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	if selector := optionalString(step.Raw, "selector"); selector != "" {
		frameLocator := frameLocatorFromRoot(scope, selector)
		return scope.WithFrame(FrameLocatorRoot(frameLocator)), nil
	}

	if name := optionalString(step.Raw, "name"); name != "" {
		for _, f := range scope.Page.Frames() {
			if f.Name() == name {
				return scope.WithFrame(FrameRoot(f)), nil
			}
		}
		return scope, newSelectorErr("frame[name="+name+"]", "no matches")
	}

	if url := optionalString(step.Raw, "url"); url != "" {
		for _, f := range scope.Page.Frames() {
			if strings.Contains(f.URL(), url) {
				return scope.WithFrame(FrameRoot(f)), nil
			}
		}
		return scope, newSelectorErr("frame[url~="+url+"]", "no matches")
	}

	if _, ok := step.Raw["index"]; ok {
		idx := optionalInt(step.Raw, "index")
		frames := scope.Page.Frames()
		if idx < 0 || idx >= len(frames) {
			return scope, newSelectorErr("frame[index]", "index out of range")
		}
		return scope.WithFrame(FrameRoot(frames[idx])), nil
	}

	return scope, newConfigErr("frame", "selector|name|url|index")
}

// execMainFrame sets currentFrame to nil.
func execMainFrame(d *Dispatcher, scope Scope, _ Step, _ bool) (Scope, error) {
	return scope.WithMainFrame(), nil
}

// frameLocatorFromRoot resolves a CSS-selected frame-locator proxy.
// It starts from the current frame when that is a frame handle
// (entered by name, url or index) and from the page otherwise: a
// current frame that is itself a frame-locator proxy, or a pinned
// parent locator, is not used as the starting point.
func frameLocatorFromRoot(scope Scope, selector string) playwright.FrameLocator {
	if scope.CurrentFrame == nil {
		return scope.Page.FrameLocator(selector)
	}
	switch r := scope.CurrentFrame.(type) {
	case interface{ Unwrap() playwright.Frame }:
		return r.Unwrap().FrameLocator(selector)
	default:
		return scope.Page.FrameLocator(selector)
	}
}
