// Package engine implements the generic line-driven state machine that
// statement format plugins plug into. The engine knows nothing about any
// statement layout: it walks the reconstructed lines once, in order, and
// delegates "what to do with this line" and "what state comes next" to the
// plugin's two pure functions.
package engine

import (
	"fmt"
	"log/slog"
)

// DefaultYearPrefix resolves two-digit years into the 2000s.
const DefaultYearPrefix = 20

// Options is the configuration bag handed to every Transition and Action
// call. The zero value is usable; missing fields are filled with defaults
// when Run starts.
type Options struct {
	// YearPrefix disambiguates two-digit years: "24" with prefix 20 is 2024.
	YearPrefix int
	// Trace logs every (state, line, next state) triple at debug level.
	// Tracing is observability only and never affects the accumulator.
	Trace bool
	// Logger receives trace output. Defaults to slog.Default.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.YearPrefix == 0 {
		o.YearPrefix = DefaultYearPrefix
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// TransitionFunc computes the state the machine moves to after reading a
// line. It must be total over all state/line combinations and must map the
// terminal state to itself.
type TransitionFunc[S comparable] func(state S, line string, opts Options) (S, error)

// ActionFunc updates the accumulator for a line read in the given state.
// It may mutate the accumulator in place or return a new one.
type ActionFunc[S comparable, A any] func(state S, line string, acc A, opts Options) (A, error)

// Plugin supplies the format-specific half of the machine: the state
// enumeration endpoints and the transition/action pair. Keywords are literal
// substrings the format is expected to contain, used for detection and
// tracing only, never for correctness.
type Plugin[S comparable, A any] struct {
	Initial    S
	Terminal   S
	Transition TransitionFunc[S]
	Action     ActionFunc[S, A]
	Keywords   []string
}

// PluginError wraps an error raised by a plugin's Action or Transition with
// enough context to diagnose a format mismatch. The engine never recovers a
// plugin error; it aborts the parse and returns it unchanged.
type PluginError struct {
	Line  int    // zero-based index of the line being processed
	Text  string // the line itself
	State string // state at the time of failure
	Err   error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin failed at line %d in state %s: %v", e.Line, e.State, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }

// Run drives the machine over the full line sequence and returns the final
// accumulator. For each line, strictly in order, the plugin's Action runs
// first against the current state, then Transition computes the next state.
// The machine never looks ahead or behind the current line.
//
// Reaching the terminal state does not stop consumption: trailing footer
// lines may still carry extractable account information, so every line is
// processed and the plugin keeps the terminal state absorbing. The result is
// the accumulator after the last line regardless of the state reached; zero
// lines return the initial accumulator untouched.
func Run[S comparable, A any](lines []string, p Plugin[S, A], opts Options, acc A) (A, error) {
	opts = opts.withDefaults()
	state := p.Initial

	for i, line := range lines {
		var err error
		acc, err = p.Action(state, line, acc, opts)
		if err != nil {
			return acc, &PluginError{Line: i, Text: line, State: fmt.Sprintf("%v", state), Err: err}
		}

		next, err := p.Transition(state, line, opts)
		if err != nil {
			return acc, &PluginError{Line: i, Text: line, State: fmt.Sprintf("%v", state), Err: err}
		}

		if opts.Trace {
			opts.Logger.Debug("machine step",
				"line", i,
				"state", fmt.Sprintf("%v", state),
				"next", fmt.Sprintf("%v", next),
				"text", line,
			)
		}
		state = next
	}
	return acc, nil
}
