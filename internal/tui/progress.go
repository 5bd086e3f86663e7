// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders terminal progress for long-running client operations.
package tui

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned by Finish when the user quit the bar early.
var ErrInterrupted = errors.New("interrupted by user")

// ProgressBar drives a bubbletea program from the goroutine that performs
// the work. It satisfies the progress interface of the search driver:
// SetTotal and Add may be called any number of times before Finish.
type ProgressBar struct {
	program *tea.Program
	result  chan runResult
	onQuit  func()
}

type runResult struct {
	model tea.Model
	err   error
}

// Option configures a ProgressBar.
type Option func(*barOptions)

type barOptions struct {
	input  io.Reader
	onQuit func()
}

// WithInput reads key presses from r, letting the user interrupt the run.
// Without it the bar ignores the keyboard.
func WithInput(r io.Reader) Option {
	return func(o *barOptions) { o.input = r }
}

// OnInterrupt registers fn to be called when the user quits the bar.
func OnInterrupt(fn func()) Option {
	return func(o *barOptions) { o.onQuit = fn }
}

// NewProgressBar starts a bar labelled label that renders to out.
func NewProgressBar(label string, out io.Writer, opts ...Option) *ProgressBar {
	var o barOptions
	for _, opt := range opts {
		opt(&o)
	}

	programOpts := []tea.ProgramOption{tea.WithOutput(out), tea.WithoutSignalHandler()}
	if o.input != nil {
		programOpts = append(programOpts, tea.WithInput(o.input))
	} else {
		programOpts = append(programOpts, tea.WithInput(nil))
	}

	pb := &ProgressBar{
		program: tea.NewProgram(newProgressModel(label), programOpts...),
		result:  make(chan runResult, 1),
		onQuit:  o.onQuit,
	}

	go func() {
		m, err := pb.program.Run()
		if err == nil {
			if final, ok := m.(progressModel); ok && final.interrupted && pb.onQuit != nil {
				pb.onQuit()
			}
		}
		pb.result <- runResult{model: m, err: err}
	}()

	return pb
}

// SetTotal sets the number of expected items.
func (pb *ProgressBar) SetTotal(total int) { pb.program.Send(totalMsg{total: total}) }

// Add advances the bar by n items.
func (pb *ProgressBar) Add(n int) { pb.program.Send(advanceMsg{n: n}) }

// Finish renders the final state, stops the program and waits for it. err
// is the outcome of the work and is shown on the bar; it is not returned.
func (pb *ProgressBar) Finish(err error) error {
	pb.program.Send(doneMsg{err: err})

	res := <-pb.result
	if res.err != nil {
		return res.err
	}
	if final, ok := res.model.(progressModel); ok && final.interrupted {
		return ErrInterrupted
	}
	return nil
}
