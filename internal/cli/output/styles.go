package output

import "github.com/charmbracelet/lipgloss"

// Status classifies a value for styling.
type Status int

// Status values.
const (
	StatusNone Status = iota
	StatusOK
	StatusWarn
	StatusFail
)

// Styles holds the lipgloss styles of a renderer.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	ID      lipgloss.Style
}

// NewStyles creates styles bound to a lipgloss renderer, which carries the
// colour profile of the output.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		ID:      r.NewStyle().Foreground(lipgloss.Color("13")),
	}
}

// ForStatus returns the style of a status.
func (s *Styles) ForStatus(status Status) lipgloss.Style {
	switch status {
	case StatusOK:
		return s.Success
	case StatusWarn:
		return s.Warning
	case StatusFail:
		return s.Error
	default:
		return s.Info
	}
}
