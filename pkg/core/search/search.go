// Package search improves desk assignments with single-solution metaheuristics.
//
// All strategies share one move (SwapNeighbor) and one objective
// (scoring.Evaluate), so their results are directly comparable. Each run owns a
// private random source seeded from its configuration and never mutates the
// starting assignment.
package search

import (
	"errors"
	"time"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// ErrInvalidConfig is returned when a search configuration cannot be run
var ErrInvalidConfig = errors.New("invalid search configuration")

// Method names used in events, results and experiment records
const (
	MethodHillClimb = "hc"
	MethodAnneal    = "sa"
	MethodILS       = "ils"
	MethodGenetic   = "ga"
)

// Result is the outcome of a search run
type Result struct {
	// Assignment is the best assignment found (the incumbent)
	Assignment model.Assignment

	// Score is the lexicographic score of Assignment
	Score model.Score

	// Initial is the score of the starting assignment
	Initial model.Score

	Stats Stats
}

// Stats counts what happened during a run
type Stats struct {
	Iterations    int
	Evaluations   int
	Accepted      int
	Improvements  int
	AcceptedWorse int
	Duration      time.Duration
}

// Event is reported to an Observer as a run progresses
type Event struct {
	Method    string
	Iteration int

	// Current is the score of the accepted state after this step
	Current model.Score

	// Best is the incumbent score after this step
	Best model.Score

	Accepted bool
	Improved bool

	// Temperature is only set by annealing
	Temperature float64
}

// Observer receives progress events. It is called synchronously from the search
// loop and must not block.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}

func notify(o Observer, e Event) {
	if o != nil {
		o.Observe(e)
	}
}
