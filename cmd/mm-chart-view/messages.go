package main

import (
	"time"

	"github.com/x1001000/mm-chart-view/pkg/engine"
)

// inputSubmitMsg carries the text the user submitted from the input box.
type inputSubmitMsg struct {
	text string
}

// loadCompleteMsg is returned by the tea.Cmd that calls sess.LoadChart.
type loadCompleteMsg struct {
	res      engine.LoadResult
	err      error
	duration time.Duration
}

// askCompleteMsg is returned by the tea.Cmd that calls sess.Ask.
type askCompleteMsg struct {
	res      engine.AskResult
	err      error
	duration time.Duration
}

// initDrainMsg fires after a short delay so that stale terminal responses
// (e.g. OSC 11 background-color replies) are discarded before focusing input.
type initDrainMsg struct{}

// tickMsg drives spinner animation while a load or ask is in flight.
type tickMsg time.Time
