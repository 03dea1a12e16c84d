package workflow

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher maps a step's type string to an executor, propagates
// (currentFrame, parentLocator) per invariant 1, honors per-step
// ignore, and enforces the post-step sleep. It is the single function
// spec.md §4.D describes, split here across dispatchOne (one step)
// and Run (a sibling list) so container executors (array, group_action,
// group_excel) can recurse into Run for their nested action lists.
type Dispatcher struct {
	sink       *Sink
	log        zerolog.Logger
	httpClient *http.Client
}

func NewDispatcher(sink *Sink, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sink: sink,
		log:  log,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Run executes steps in order against scope, threading frame/goto
// mutations forward to later siblings. groupIgnore is true when an
// enclosing group already set ignore:true, which swallows a nested
// step's own failure regardless of that step's own ignore value.
func (d *Dispatcher) Run(scope Scope, steps []Step, groupIgnore bool) error {
	cur := scope
	for i := range steps {
		step := steps[i]
		next, err := d.dispatchOne(cur, step, groupIgnore)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func (d *Dispatcher) dispatchOne(scope Scope, step Step, groupIgnore bool) (Scope, error) {
	title := step.Title
	if title == "" {
		title = step.Type
	}
	d.log.Info().Str("step", step.Type).Str("title", title).Msg("▶ dispatching step")
	d.sink.Info(title, "starting: "+step.Type)

	exec, ok := stepExecutors[step.Type]
	if !ok {
		err := newConfigErr(step.Type, "type")
		return d.finishStep(scope, step, title, scope, err, groupIgnore)
	}

	nextScope, err := exec(d, scope, step, groupIgnore)
	return d.finishStep(scope, step, title, nextScope, err, groupIgnore)
}

// finishStep applies ignore handling and the post-step sleep,
// regardless of whether the executor succeeded.
func (d *Dispatcher) finishStep(scope Scope, step Step, title string, nextScope Scope, err error, groupIgnore bool) (Scope, error) {
	if err != nil {
		if step.Ignore || groupIgnore {
			d.log.Warn().Str("step", step.Type).Str("title", title).Err(err).Msg("⚠️ ignored step failure")
			d.sink.Warn(title, err.Error())
			err = nil
			nextScope = scope // failed step never advances scope
		} else {
			d.log.Error().Str("step", step.Type).Str("title", title).Err(err).Msg("❌ fatal step failure")
			d.sink.Error(title, err.Error())
		}
	} else {
		d.log.Debug().Str("step", step.Type).Str("title", title).Msg("✅ step ok")
		d.sink.Info(title, "ok")
	}

	if step.Sleep > 0 {
		time.Sleep(time.Duration(step.Sleep * float64(time.Second)))
	}

	if err != nil {
		return scope, err
	}
	return nextScope, nil
}

type executorFunc func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error)

var stepExecutors = map[string]executorFunc{
	"goto":               execGoto,
	"refresh":            execRefresh,
	"use_last_tab":       execUseLastTab,
	"frame":              execFrame,
	"main_frame":         execMainFrame,
	"click":              execClick,
	"write":              execWrite,
	"write_excel":        execWriteExcel,
	"select":             execSelect,
	"scroll":             execScroll,
	"array":              execArray,
	"group_action":       execGroupAction,
	"group_excel":        execGroupExcel,
	"download_from_link": execDownloadFromLink,
}
