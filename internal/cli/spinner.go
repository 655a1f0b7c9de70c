package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// errInterrupted is returned when the user aborts a running call.
var errInterrupted = errors.New("interrupted")

// doneMsg carries the result of the wrapped call.
type doneMsg[T any] struct {
	value T
	err   error
}

// spinnerModel shows a spinner while a single call runs.
type spinnerModel[T any] struct {
	label    string
	spinner  spinner.Model
	theme    Theme
	cancel   context.CancelFunc
	run      func() (T, error)
	result   T
	err      error
	done     bool
	quitting bool
}

func newSpinnerModel[T any](label string, cancel context.CancelFunc, run func() (T, error)) spinnerModel[T] {
	return spinnerModel[T]{
		label:   label,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		theme:   defaultTheme,
		cancel:  cancel,
		run:     run,
	}
}

// Init starts the spinner and the call.
func (m spinnerModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.call())
}

// call runs in its own goroutine so Update never blocks.
func (m spinnerModel[T]) call() tea.Cmd {
	return func() tea.Msg {
		v, err := m.run()
		return doneMsg[T]{value: v, err: err}
	}
}

// Update handles messages and returns the updated model.
func (m spinnerModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case doneMsg[T]:
		m.result, m.err, m.done = msg.value, msg.err, true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner line; it is cleared once the call finishes.
func (m spinnerModel[T]) View() tea.View {
	if m.done || m.quitting {
		return tea.NewView("")
	}
	line := fmt.Sprintf("%s %s %s\n",
		m.theme.statusStyle().Render(m.spinner.View()),
		m.label,
		m.theme.hintStyle().Render("(ctrl+c to cancel)"))
	return tea.NewView(line)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withSpinner runs fn, showing a spinner when out is a terminal.
func withSpinner[T any](ctx context.Context, out io.Writer, label string, fn func(ctx context.Context) (T, error)) (T, error) {
	if !isTerminal(out) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newSpinnerModel(label, cancel, func() (T, error) { return fn(ctx) })
	p := tea.NewProgram(model, tea.WithOutput(out))

	finalModel, err := p.Run()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("spinner UI error: %w", err)
	}

	m, ok := finalModel.(spinnerModel[T])
	if !ok || m.quitting {
		var zero T
		return zero, errInterrupted
	}
	return m.result, m.err
}
