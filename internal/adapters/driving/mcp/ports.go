package mcp

import (
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Messages decides which chat messages are indexed.
	Messages driving.MessageService

	// Files reads and writes the watched file tree.
	Files driving.FileBrowser

	// GitSync starts git synchronisation runs.
	GitSync driving.GitSyncTrigger

	// Repositories lists local clones.
	Repositories driving.RepositoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Messages == nil {
		return ErrMissingMessageService
	}
	if p.Files == nil {
		return ErrMissingFileBrowser
	}
	// GitSync and Repositories are optional
	return nil
}
