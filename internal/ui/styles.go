package ui

import "github.com/charmbracelet/lipgloss"

// Botdash palette, tuned for dark terminal backgrounds
const (
	ColorWhite = "#FFFFFF"

	ColorSlate400 = "#94A3B8"
	ColorSlate500 = "#64748B"
	ColorSlate600 = "#475569"
	ColorSlate800 = "#1E293B"

	ColorViolet300 = "#C4B5FD"
	ColorViolet400 = "#A78BFA"
	ColorViolet500 = "#8B5CF6"
	ColorViolet600 = "#7C3AED"

	ColorEmerald400 = "#34D399"
	ColorRose400    = "#FB7185"
	ColorAmber400   = "#FBBF24"
	ColorCyan400    = "#22D3EE"
)

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var (
	TitleStyle   = fg(ColorViolet500).Bold(true)
	SuccessStyle = fg(ColorEmerald400).Bold(true)
	ErrorStyle   = fg(ColorRose400).Bold(true)
	WarningStyle = fg(ColorAmber400).Bold(true)
	DimStyle     = fg(ColorSlate500)
	CommandStyle = fg(ColorViolet400).Bold(true)
	URLStyle     = fg(ColorCyan400).Underline(true)

	// BoxStyle frames step instructions.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorViolet500)).
			Padding(0, 1).
			Width(76)
)
