package driving

import "context"

// Scheduler runs periodic background tasks such as git sync.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error
}

// GitSyncTrigger starts git synchronisation runs subject to the cooldown gate.
type GitSyncTrigger interface {
	// Trigger starts a run in the background if the gate allows it.
	// Returns false if the call was rate limited or a run is in flight.
	Trigger(ctx context.Context) bool

	// Wait blocks until the current run, if any, has finished.
	Wait()
}
