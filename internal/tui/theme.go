package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorAccent = lipgloss.AdaptiveColor{Dark: "#B39DDB", Light: "#5E35B1"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorText   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	Background(colorAccent).
	Padding(0, 1)

var activeTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorAccent).
	Border(lipgloss.NormalBorder(), false, false, true, false).
	BorderForeground(colorAccent).
	Padding(0, 1)

var tabStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Padding(0, 1)

var rowStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// selectedRowStyle highlights the row under the cursor.
var selectedRowStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(colorAccent).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(colorAccent)

var completedStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Strikethrough(true)

// draftStyle marks rows the server has not confirmed yet.
var draftStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Italic(true)

var successStyle = lipgloss.NewStyle().Foreground(colorGreen)

var errorStyle = lipgloss.NewStyle().Foreground(colorRed)

var helpStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Italic(true)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(0, 1)
