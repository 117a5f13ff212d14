// Package common provides shared styles for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	TurnIcon  = "👉"
	IdleIcon  = "⌛"
	CityIcon  = "🏙️"
	TitleText = "🌍 City Chain"
)

// Lipgloss Styles
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	TurnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	ListStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
