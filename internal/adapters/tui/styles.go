package tui

import "github.com/charmbracelet/lipgloss"

var ( //nolint:gochecknoglobals // style table
	cardStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B6EA5"))

	hiddenStyle   = cardStyle.Foreground(lipgloss.Color("#5C6B7A"))
	revealedStyle = cardStyle.Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	matchedStyle  = cardStyle.Foreground(lipgloss.Color("#9BD39B")).BorderForeground(lipgloss.Color("#2F6B3A"))
	cursorBorder  = lipgloss.Color("#FFD700")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4500"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#AAAAAA"))
	resultStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFD700")).
			Foreground(lipgloss.Color("#00FF00"))
)
