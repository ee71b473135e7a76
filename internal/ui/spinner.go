package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// spinnerOutput is where spinners draw; stderr keeps command output clean.
var spinnerOutput io.Writer = os.Stderr

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

type spinnerDone struct{}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(fg(ColorViolet500)))
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDone:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + DimStyle.Render(m.message)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// startSpinner draws until the returned stop function is called. Without a
// terminal the message is printed once instead.
func startSpinner(message string) (stop func()) {
	if !isTerminal(spinnerOutput) {
		fmt.Fprintln(spinnerOutput, DimStyle.Render(message))
		return func() {}
	}

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(spinnerOutput), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(finished)
	}()
	return func() {
		p.Send(spinnerDone{})
		<-finished
	}
}

// WithSpinnerResult runs fn while a spinner shows message.
func WithSpinnerResult[T any](message string, fn func() (T, error)) (T, error) {
	stop := startSpinner(message)
	defer stop()
	return fn()
}
