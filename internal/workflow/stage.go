package workflow

import (
	"context"
)

// Stage is one node in the analysis workflow. A stage receives the run
// state by value and returns the next state; it must not retain or mutate
// the input. Returning an error routes the run to the error terminal.
type Stage interface {
	// ID returns the unique identifier for this stage.
	ID() string

	// Name returns the human-readable name for this stage.
	Name() string

	// Run executes the stage against the current state.
	Run(ctx context.Context, state State) (State, error)
}
