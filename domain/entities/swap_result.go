package entities

import "time"

// SwapOutcome describes how a swap request resolved.
type SwapOutcome string

const (
	// SwapOutcomeAppliedImmediate means the roster changed in the same
	// transaction as the request.
	SwapOutcomeAppliedImmediate SwapOutcome = "applied-immediate"
	// SwapOutcomeDeferred means the swap was queued for the next boundary.
	SwapOutcomeDeferred SwapOutcome = "deferred"
)

// SwapResult is returned from a swap request.
type SwapResult struct {
	Outcome       SwapOutcome
	EffectiveDate time.Time
	// Pending holds the queued row when Outcome is deferred.
	Pending *PendingSwap
}

// CancelOutcome describes how a cancel request resolved.
type CancelOutcome string

const (
	// CancelOutcomeCancelled means a pending swap was cancelled.
	CancelOutcomeCancelled CancelOutcome = "cancelled"
	// CancelOutcomeNoop means there was nothing cancellable at the position.
	CancelOutcomeNoop CancelOutcome = "no-op"
)

// CancelResult is returned from a cancel request.
type CancelResult struct {
	Outcome CancelOutcome
	// Cancelled holds the row that was cancelled, when there was one.
	Cancelled *PendingSwap
}

// BoundaryResult summarizes one day-boundary run.
type BoundaryResult struct {
	Date time.Time
	// Applied counts pending swaps whose roster write went through.
	Applied int
	// Skipped counts pending swaps that resolved without a roster change,
	// such as when the slot no longer holds the recorded outgoing curator.
	Skipped int
	// Failed counts pending swaps whose transaction errored. They stay
	// pending and the next run retries them.
	Failed int
}
