// Package services implements the driving port interfaces and the
// ingestion pipeline core: the event stream, the dispatcher that is the
// sole writer to the search backend, the git sync gate and scheduler,
// and chat message tracking.
//
// Services depend only on domain types and driven ports.
package services
