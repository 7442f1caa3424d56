package app

import (
	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status is the loading indicator shown in the title bar. It satisfies
// boundary.StatusIndicator; the spinner only runs while the loading message
// is up.
type Status struct {
	spinner spinner.Model
	theme   *theme.Theme
	message string
	visible bool
}

// NewStatus creates a hidden status indicator
func NewStatus(t *theme.Theme) *Status {
	s := &Status{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	s.SetTheme(t)
	return s
}

// SetTheme recolors the indicator
func (s *Status) SetTheme(t *theme.Theme) {
	if t == nil {
		t = theme.Get(theme.DefaultName)
	}
	s.theme = t
	s.spinner.Style = lipgloss.NewStyle().Foreground(t.Info)
}

// Show displays msg
func (s *Status) Show(msg string) {
	s.message = msg
	s.visible = true
}

// Hide removes the indicator
func (s *Status) Hide() {
	s.visible = false
}

// Visible reports whether a message is shown
func (s *Status) Visible() bool {
	return s.visible
}

// Message returns the last message shown
func (s *Status) Message() string {
	return s.message
}

// Busy reports whether the loading message is up
func (s *Status) Busy() bool {
	return s.visible && s.message == boundary.MsgLoading
}

// Tick starts the spinner
func (s *Status) Tick() tea.Msg {
	return s.spinner.Tick()
}

// Update advances the spinner. Ticks stop once the indicator is no longer busy.
func (s *Status) Update(msg tea.Msg) tea.Cmd {
	if !s.Busy() {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the indicator, empty when hidden
func (s *Status) View() string {
	if !s.visible {
		return ""
	}
	if s.Busy() {
		return s.spinner.View() + " " + lipgloss.NewStyle().Foreground(s.theme.Info).Render(s.message)
	}
	return lipgloss.NewStyle().Foreground(s.theme.Error).Bold(true).Render(s.message)
}
