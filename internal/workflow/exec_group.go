package workflow

import "github.com/playwright-community/playwright-go"

// selectIndices resolves which parent indices a group iterates:
// exactly one if array_select_one is given (bounds-checked against
// the live match count), otherwise every index in document order.
func selectIndices(selectOne *int, count int, selector string) ([]int, error) {
	if selectOne != nil {
		idx := *selectOne
		if idx < 0 || idx >= count {
			return nil, newSelectorErr(selector, "index out of range")
		}
		return []int{idx}, nil
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i
	}
	return out, nil
}

// execArray is the "parent matcher" + click-list construct: for each
// matched parent (or the one pinned by array_select_one), run each
// child click scoped to that parent.
func execArray(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
	css := buildSelector(step.Tag, step.Class, step.Attr, step.Value)
	parentLoc := scope.Root().ResolveLocator(css)

	if textInside := optionalString(step.Raw, "if_find_text_inside"); textInside != "" {
		parentLoc = parentLoc.Filter(playwright.LocatorFilterOptions{HasText: textInside})
	}

	count, err := parentLoc.Count()
	if err != nil {
		return scope, wrapDriverErr("count array parents", err)
	}
	if count == 0 {
		return scope, newSelectorErr(css, "no matches")
	}

	childSteps, err := decodeStepsFromAny(step.Raw["click"])
	if err != nil {
		return scope, err
	}

	indices, err := selectIndices(step.ArraySelectOne, count, css)
	if err != nil {
		return scope, err
	}

	effectiveIgnore := groupIgnore || step.Ignore
	for _, idx := range indices {
		childScope := scope.WithParent(parentLoc.Nth(idx))
		if err := d.Run(childScope, childSteps, effectiveIgnore); err != nil {
			return scope, err
		}
	}
	return scope, nil
}

// execGroupAction is the generalized array: any step types in actions,
// dispatched recursively, with global_actions (and its per-action
// `global` override) controlling whether a given action is scoped to
// the matched parent or to the page root. Parent matching always gates
// how many times the group iterates.
func execGroupAction(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
	css := buildSelector(step.Tag, step.Class, step.Attr, step.Value)
	parentLoc := scope.Root().ResolveLocator(css)

	count, err := parentLoc.Count()
	if err != nil {
		return scope, wrapDriverErr("count group_action parents", err)
	}
	if count == 0 {
		return scope, newSelectorErr(css, "no matches")
	}

	actions, err := decodeStepsFromAny(step.Raw["actions"])
	if err != nil {
		return scope, err
	}

	indices, err := selectIndices(step.ArraySelectOne, count, css)
	if err != nil {
		return scope, err
	}

	globalDefault := optionalBool(step.Raw, "global_actions")
	effectiveIgnore := groupIgnore || step.Ignore

	for _, idx := range indices {
		cur := scope.WithParent(parentLoc.Nth(idx))
		for _, action := range actions {
			useGlobal := globalDefault
			if _, ok := action.Raw["global"]; ok {
				useGlobal = optionalBool(action.Raw, "global")
			}
			execScope := cur
			if useGlobal {
				execScope.ParentLocator = nil
			}
			next, err := d.dispatchOne(execScope, action, effectiveIgnore)
			if err != nil {
				return scope, err
			}
			cur.Page = next.Page
			cur.CurrentFrame = next.CurrentFrame
			if !useGlobal {
				cur.ParentLocator = next.ParentLocator
			}
		}
	}
	return scope, nil
}

// execGroupExcel loads rows starting at start_row (default 2),
// halting on the first fully-blank row, and dispatches actions once
// per row with that row bound as the current Excel row context. A
// group_excel nested inside a group_action opens its own row context,
// shadowing any outer one, by construction: WithExcel always replaces
// rather than merges.
func execGroupExcel(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
	file, err := requiredString(step.Raw, "file")
	if err != nil {
		return scope, err
	}
	startRow := optionalInt(step.Raw, "start_row")
	if startRow == 0 {
		startRow = 2
	}
	rows, err := loadExcelRows(file, startRow)
	if err != nil {
		return scope, err
	}

	actions, err := decodeStepsFromAny(step.Raw["actions"])
	if err != nil {
		return scope, err
	}

	effectiveIgnore := groupIgnore || step.Ignore
	for i, row := range rows {
		if rowIsBlank(row) { // defense in depth; loadExcelRows already halts here
			break
		}
		rowScope := scope.WithExcel(&ExcelContext{Row: i, Cells: row})
		if err := d.Run(rowScope, actions, effectiveIgnore); err != nil {
			return scope, err
		}
	}
	return scope, nil
}
