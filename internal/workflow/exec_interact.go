package workflow

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// execClick handles the locator fields plus the optional `if`
// conditional: when `if` is present and satisfied, it runs the
// conditional's click list instead of the outer click, never both.
func execClick(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
	if ifRaw, ok := step.Raw["if"]; ok {
		return execClickIf(d, scope, step, ifRaw, groupIgnore)
	}
	return scope, doClick(scope, step)
}

func execClickIf(d *Dispatcher, scope Scope, step Step, ifRaw any, groupIgnore bool) (Scope, error) {
	ifMap, ok := ifRaw.(map[string]any)
	if !ok {
		return scope, newConfigErr("click", "if")
	}
	ifMap = lowercaseKeys(ifMap)

	status := optionalString(ifMap, "status")
	count, err := countMatches(scope,
		optionalString(ifMap, "tag"),
		optionalString(ifMap, "class"),
		optionalString(ifMap, "attr", "arrt", "attribute"),
		optionalString(ifMap, "value"),
		optionalString(ifMap, "text"),
	)
	if err != nil {
		return scope, err
	}
	found := count > 0
	satisfied := (status == "found" && found) || (status == "not_found" && !found)

	if !satisfied {
		return scope, doClick(scope, step)
	}

	childSteps, err := decodeStepsFromAny(ifMap["click"])
	if err != nil {
		return scope, err
	}
	return scope, d.Run(scope, childSteps, groupIgnore)
}

func countMatches(scope Scope, tag, class, attr, value, text string) (int, error) {
	css := buildSelector(tag, class, attr, value)
	loc := scope.Root().ResolveLocator(css)
	if text != "" {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: text})
	}
	count, err := loc.Count()
	if err != nil {
		return 0, wrapDriverErr("count if-matcher", err)
	}
	return count, nil
}

func doClick(scope Scope, step Step) error {
	css := buildSelector(step.Tag, step.Class, step.Attr, step.Value)
	index := 0
	if step.ArraySelectOne != nil {
		index = *step.ArraySelectOne
	}
	loc, err := resolveLocator(scope.Root(), css, step.Text, index, step.Timeout)
	if err != nil {
		return err
	}
	return clickWithLinkAwareness(scope.Page, loc)
}

// execWrite focuses the element, optionally clears it, and types the
// write/value/text payload character by character with a randomized
// delay per keystroke — a plain Fill is a contract violation here.
func execWrite(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	return scope, doWrite(scope, step, step.WritePayload())
}

// execWriteExcel is legal only inside a group_excel iteration; it reads
// the current row's column at write_from_col (1-based) and otherwise
// behaves as write.
func execWriteExcel(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	if scope.Excel == nil {
		return scope, newConfigErr("write_excel", "group_excel context")
	}
	col := optionalInt(step.Raw, "write_from_col")
	val, ok := scope.Excel.Cell(col)
	if !ok {
		d.sink.Warn(step.Title, fmt.Sprintf("column %d missing on row %d, using empty string", col, scope.Excel.Row))
		val = ""
	}
	return scope, doWrite(scope, step, val)
}

func doWrite(scope Scope, step Step, payload string) error {
	css := buildSelector(step.Tag, step.Class, step.Attr, step.Value)
	index := 0
	if step.ArraySelectOne != nil {
		index = *step.ArraySelectOne
	}
	loc, err := resolveLocator(scope.Root(), css, step.Text, index, step.Timeout)
	if err != nil {
		return err
	}
	if err := loc.Click(); err != nil {
		return wrapDriverErr("focus for write", err)
	}
	if optionalBoolDefault(step.Raw, true, "clear") {
		if err := loc.Fill(""); err != nil {
			return wrapDriverErr("clear for write", err)
		}
	}
	return humanType(loc, payload)
}

// humanType types payload one rune at a time with a 50-150ms random
// delay per character (space characters add 100-200ms extra). The
// typing cadence is observable and required by the destination site's
// bot heuristics — a pure fill would skip it entirely.
func humanType(loc playwright.Locator, payload string) error {
	for _, r := range payload {
		if err := loc.Type(string(r)); err != nil {
			return wrapDriverErr("type character", err)
		}
		delay := 50 + rand.Intn(101)
		if r == ' ' {
			delay += 100 + rand.Intn(101)
		}
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}
	return nil
}

// execSelect applies exactly one of option_value, option_label, or
// option_index to the (default tag "select") native element.
func execSelect(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	tag := step.Tag
	if tag == "" {
		tag = "select"
	}
	css := buildSelector(tag, step.Class, step.Attr, step.Value)
	index := 0
	if step.ArraySelectOne != nil {
		index = *step.ArraySelectOne
	}
	loc, err := resolveLocator(scope.Root(), css, step.Text, index, step.Timeout)
	if err != nil {
		return scope, err
	}

	switch {
	case hasField(step.Raw, "option_value"):
		v := optionalString(step.Raw, "option_value")
		_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{v}})
	case hasField(step.Raw, "option_label"):
		v := optionalString(step.Raw, "option_label")
		_, err = loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{v}})
	case hasField(step.Raw, "option_index"):
		idx := optionalInt(step.Raw, "option_index")
		_, err = loc.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{idx}})
	default:
		return scope, newConfigErr("select", "option_value|option_label|option_index")
	}
	if err != nil {
		return scope, wrapDriverErr("select option", err)
	}
	return scope, nil
}

func hasField(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// execScroll scrolls either to absolute window coordinates or an
// element into view.
func execScroll(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	if hasField(step.Raw, "x") || hasField(step.Raw, "y") {
		x := optionalFloat(step.Raw, "x")
		y := optionalFloat(step.Raw, "y")
		if _, err := scope.Page.Evaluate(fmt.Sprintf("window.scrollTo(%f, %f)", x, y)); err != nil {
			return scope, wrapDriverErr("scroll", err)
		}
		return scope, nil
	}

	css := buildSelector(step.Tag, step.Class, step.Attr, step.Value)
	index := 0
	if step.ArraySelectOne != nil {
		index = *step.ArraySelectOne
	}
	loc, err := resolveLocator(scope.Root(), css, step.Text, index, step.Timeout)
	if err != nil {
		return scope, err
	}
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		return scope, wrapDriverErr("scroll into view", err)
	}
	return scope, nil
}
