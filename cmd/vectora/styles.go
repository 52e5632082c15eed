package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for terminal output.
var (
	// Overlay card.
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 2).
			Width(cardWidth)
	cardLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)  // gray
	cardPercentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // bright cyan
	cardMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))             // light gray
	cardFooterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true) // dim
	cardErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)  // red
	cardBlockedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("1")).
				Padding(0, 2)

	// Popup.
	providerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	modelNameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
	pillStyle         = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	pillActiveStyle   = pillStyle.BorderForeground(lipgloss.Color("6")).Bold(true)
	pillDisabledStyle = pillStyle.Foreground(lipgloss.Color("8")).Faint(true)
	statusOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	statusErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	statusBusyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true)

	// Config wizard.
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
