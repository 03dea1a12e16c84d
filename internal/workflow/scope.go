package workflow

import "github.com/playwright-community/playwright-go"

// Root is satisfied by a small adapter wrapping whichever concrete
// playwright type currently anchors locator resolution: the page, a
// frame handle, a frame-locator proxy, or a pinned parent locator.
// playwright-go gives each of those a Locator(selector, ...options)
// method with a distinct per-type options struct, so they cannot
// share one interface directly; the adapters below flatten that down
// to the single call shape the resolver needs.
type Root interface {
	ResolveLocator(selector string) playwright.Locator
}

type pageRoot struct{ page playwright.Page }

func (r pageRoot) ResolveLocator(selector string) playwright.Locator { return r.page.Locator(selector) }

// PageRoot wraps a page as a Root.
func PageRoot(page playwright.Page) Root { return pageRoot{page: page} }

type frameRoot struct{ frame playwright.Frame }

func (r frameRoot) ResolveLocator(selector string) playwright.Locator {
	return r.frame.Locator(selector)
}

// Unwrap exposes the wrapped frame handle for callers (the frame
// executor) that need a frame-specific method beyond Locator.
func (r frameRoot) Unwrap() playwright.Frame { return r.frame }

// FrameRoot wraps a frame handle as a Root.
func FrameRoot(frame playwright.Frame) Root { return frameRoot{frame: frame} }

type frameLocatorRoot struct{ fl playwright.FrameLocator }

func (r frameLocatorRoot) ResolveLocator(selector string) playwright.Locator {
	return r.fl.Locator(selector)
}

// FrameLocatorRoot wraps a frame-locator proxy as a Root.
func FrameLocatorRoot(fl playwright.FrameLocator) Root { return frameLocatorRoot{fl: fl} }

type locatorRoot struct{ loc playwright.Locator }

func (r locatorRoot) ResolveLocator(selector string) playwright.Locator {
	return r.loc.Locator(selector)
}

// LocatorRoot wraps a pinned parent locator as a Root.
func LocatorRoot(loc playwright.Locator) Root { return locatorRoot{loc: loc} }

// Scope is the explicit context threaded through every executor,
// replacing ambient state with a value passed at each call. A frame
// switch or parent pin returns a new Scope rather than mutating one in
// place.
type Scope struct {
	Page          playwright.Page
	CurrentFrame  Root // nil means page root
	ParentLocator Root // nil means use frame/page root
	Excel         *ExcelContext
}

// Root resolves the effective root per invariant 1:
// parentLocator ?? currentFrame ?? page.
func (s Scope) Root() Root {
	if s.ParentLocator != nil {
		return s.ParentLocator
	}
	if s.CurrentFrame != nil {
		return s.CurrentFrame
	}
	return PageRoot(s.Page)
}

// WithFrame returns a copy of the scope switched to the given frame
// root, clearing any parent locator (frame switches are never scoped
// to a prior pinned element).
func (s Scope) WithFrame(frame Root) Scope {
	next := s
	next.CurrentFrame = frame
	next.ParentLocator = nil
	return next
}

// WithMainFrame resets currentFrame to the page root.
func (s Scope) WithMainFrame() Scope {
	next := s
	next.CurrentFrame = nil
	next.ParentLocator = nil
	return next
}

// WithParent returns a copy of the scope pinned to a matched element,
// used as the root for nested actions inside array and group_action.
func (s Scope) WithParent(loc playwright.Locator) Scope {
	next := s
	next.ParentLocator = LocatorRoot(loc)
	return next
}

// WithExcel returns a copy of the scope carrying a fresh row context.
// A nested group_excel always shadows any outer row context rather
// than inheriting it.
func (s Scope) WithExcel(ctx *ExcelContext) Scope {
	next := s
	next.Excel = ctx
	return next
}

// AfterGoto resets currentFrame per invariant 4.
func (s Scope) AfterGoto() Scope {
	return s.WithMainFrame()
}
