// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/lipgloss"

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Faint(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)
