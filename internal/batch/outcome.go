package batch

import (
	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/domain"
)

// Verdict is the derived outcome of a batch. It is always recomputed from
// current unit states, never cached incrementally.
type Verdict string

const (
	// VerdictInProgress means at least one unit is still Pending or
	// Generating.
	VerdictInProgress Verdict = "in_progress"

	// VerdictSucceeded means the batch met its success policy.
	VerdictSucceeded Verdict = "succeeded"

	// VerdictFailed means all units are terminal and the batch fell short
	// of its success threshold.
	VerdictFailed Verdict = "failed"
)

// Policy configures how a batch's verdict is derived.
type Policy struct {
	// SuccessThreshold is the minimum number of Completed units for the
	// batch to succeed. Zero means no threshold: the batch succeeds once
	// every unit is terminal, whatever the mix; partial success is a
	// valid end state for exploratory portfolios.
	SuccessThreshold int
}

// Outcome summarizes a reconciled batch.
type Outcome struct {
	BatchID   uuid.UUID
	Total     int
	Completed int
	Failed    int
	Verdict   Verdict
}

// ComputeOutcome derives the outcome of a batch from its current unit
// states under the given policy.
func ComputeOutcome(batchID uuid.UUID, units []*domain.GenerationUnit, policy Policy) Outcome {
	outcome := Outcome{BatchID: batchID, Total: len(units)}

	terminal := 0
	for _, unit := range units {
		switch unit.Status {
		case domain.UnitStatusCompleted:
			outcome.Completed++
			terminal++
		case domain.UnitStatusFailed:
			outcome.Failed++
			terminal++
		}
	}

	switch {
	case terminal < len(units):
		outcome.Verdict = VerdictInProgress
	case policy.SuccessThreshold > 0 && outcome.Completed < policy.SuccessThreshold:
		outcome.Verdict = VerdictFailed
	default:
		outcome.Verdict = VerdictSucceeded
	}

	return outcome
}
