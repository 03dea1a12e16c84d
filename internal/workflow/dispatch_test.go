package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// withTestExecutor temporarily registers a fake executor for typ,
// restoring (or removing) the prior entry once the test finishes.
func withTestExecutor(t *testing.T, typ string, fn executorFunc) {
	t.Helper()
	prev, had := stepExecutors[typ]
	stepExecutors[typ] = fn
	t.Cleanup(func() {
		if had {
			stepExecutors[typ] = prev
		} else {
			delete(stepExecutors, typ)
		}
	})
}

func newTestDispatcher() (*Dispatcher, *Sink) {
	sink := NewSink()
	return NewDispatcher(sink, zerolog.Nop()), sink
}

func TestDispatchOneOwnIgnoreSwallowsFailure(t *testing.T) {
	withTestExecutor(t, "boom", func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
		return scope, errors.New("boom failed")
	})

	d, sink := newTestDispatcher()
	step := Step{Type: "boom", Title: "boom step", Ignore: true}

	err := d.Run(Scope{}, []Step{step}, false)
	require.NoError(t, err, "a step's own ignore flag must swallow its failure")

	records := sink.Records()
	require.NotEmpty(t, records)
	require.Equal(t, "warn", records[len(records)-1].Level)
}

func TestDispatchOneGroupIgnoreCoversNestedFailure(t *testing.T) {
	withTestExecutor(t, "boom", func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
		return scope, errors.New("boom failed")
	})

	d, _ := newTestDispatcher()
	step := Step{Type: "boom", Title: "nested boom"} // no own ignore

	err := d.Run(Scope{}, []Step{step}, true) // enclosing group sets ignore
	require.NoError(t, err, "groupIgnore must cover a nested step's own failure")
}

func TestDispatchOneUnignoredFailurePropagates(t *testing.T) {
	withTestExecutor(t, "boom", func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
		return scope, errors.New("boom failed")
	})

	d, sink := newTestDispatcher()
	step := Step{Type: "boom", Title: "fatal boom"}

	err := d.Run(Scope{}, []Step{step}, false)
	require.Error(t, err)

	records := sink.Records()
	require.Equal(t, "error", records[len(records)-1].Level)
}

func TestDispatchOneUnknownTypeIsConfigErr(t *testing.T) {
	d, _ := newTestDispatcher()
	step := Step{Type: "not_a_real_step"}

	err := d.Run(Scope{}, []Step{step}, false)
	require.Error(t, err)
	var cfgErr *ConfigErr
	require.ErrorAs(t, err, &cfgErr)
}

func TestFinishStepSleepsPostStep(t *testing.T) {
	withTestExecutor(t, "noop", func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
		return scope, nil
	})

	d, _ := newTestDispatcher()
	step := Step{Type: "noop", Sleep: 0.05}

	start := time.Now()
	require.NoError(t, d.Run(Scope{}, []Step{step}, false))
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRunThreadsScopeForward(t *testing.T) {
	withTestExecutor(t, "mark", func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
		scope.Excel = &ExcelContext{Row: 7}
		return scope, nil
	})
	withTestExecutor(t, "observe", func(d *Dispatcher, scope Scope, step Step, groupIgnore bool) (Scope, error) {
		if scope.Excel == nil || scope.Excel.Row != 7 {
			return scope, errors.New("scope mutation from prior sibling was not threaded forward")
		}
		return scope, nil
	})

	d, _ := newTestDispatcher()
	err := d.Run(Scope{}, []Step{{Type: "mark"}, {Type: "observe"}}, false)
	require.NoError(t, err)
}
