package main

import "github.com/charmbracelet/lipgloss"

var (
	quoteStyle = lipgloss.NewStyle().
			Italic(true).
			PaddingLeft(2).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("#8BC34A"))

	authorStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
	likedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(12)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")).Bold(true)
)
