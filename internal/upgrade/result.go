package upgrade

import "github.com/netzint/nextcloudctl/internal/planner"

// StepStatus is the tagged outcome of one upgrade step.
type StepStatus int

const (
	// StepSucceeded means the step completed, including maintenance.
	StepSucceeded StepStatus = iota
	// StepSkipped means the step was abandoned after the stack came up
	// (e.g. the primary container could not be resolved) but the run
	// advanced to the next step.
	StepSkipped
	// PlanAborted means the step failed fatally and no further steps
	// were executed.
	PlanAborted
)

// String returns the status name.
func (s StepStatus) String() string {
	switch s {
	case StepSucceeded:
		return "succeeded"
	case StepSkipped:
		return "skipped"
	case PlanAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StepResult is the outcome of one executed step, surfaced explicitly to
// the caller rather than inferred from log output.
type StepResult struct {
	Step   planner.Step
	Status StepStatus
	// Reason carries the failure cause for skipped and aborted steps;
	// nil on success.
	Reason error
}
