package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusRunning lipgloss.Style
}

// NewStyles builds styles for w. Without a terminal every style renders
// plain text.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	re := lipgloss.NewRenderer(w)
	if !isTTY {
		re.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		Header1: re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: re.NewStyle().Bold(true),
		Bold:    re.NewStyle().Bold(true),
		Muted:   re.NewStyle().Foreground(lipgloss.Color("8")),
		Success: re.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: re.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   re.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    re.NewStyle().Foreground(lipgloss.Color("14")),

		StatusSuccess: re.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		StatusFailed:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		StatusRunning: re.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// State renders an entity state with its status color.
func (s *Styles) State(state string) string {
	switch state {
	case "COMPLETED", "READY":
		return s.StatusSuccess.Render(state)
	case "ERROR", "STOP":
		return s.StatusFailed.Render(state)
	case "RUNNING", "CREATED":
		return s.StatusRunning.Render(state)
	default:
		return s.Muted.Render(state)
	}
}
