// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

type totalMsg struct {
	total int
}

type advanceMsg struct {
	n int
}

type doneMsg struct {
	err error
}
