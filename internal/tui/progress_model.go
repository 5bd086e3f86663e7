// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const barWidth = 40

// progressModel renders a labelled bar. Until the total is known a spinner
// stands in for the bar.
type progressModel struct {
	label   string
	bar     progress.Model
	spinner spinner.Model

	total int
	done  int

	finished    bool
	interrupted bool
	err         error
}

func newProgressModel(label string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return progressModel{
		label:   label,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		spinner: s,
		total:   -1,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case totalMsg:
		m.total = msg.total
		return m, nil

	case advanceMsg:
		m.done += msg.n
		return m, nil

	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	p := float64(m.done) / float64(m.total)
	if p > 1 {
		return 1
	}
	return p
}

func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render(m.label))
	b.WriteByte(' ')

	switch {
	case m.total < 0 && !m.finished:
		b.WriteString(m.spinner.View())
	case m.total < 0:
		// finished before the first page arrived
	default:
		b.WriteString(m.bar.ViewAs(m.percent()))
	}

	count := fmt.Sprintf(" %d", m.done)
	if m.total >= 0 {
		count = fmt.Sprintf(" %d/%d", m.done, m.total)
	}
	b.WriteString(countStyle.Render(count))

	switch {
	case m.err != nil:
		b.WriteString(" " + errorStyle.Render("error: "+m.err.Error()))
	case m.interrupted:
		b.WriteString(" " + errorStyle.Render("interrupted"))
	case m.finished:
		b.WriteString(" " + doneStyle.Render("done"))
	}

	b.WriteByte('\n')
	return b.String()
}
