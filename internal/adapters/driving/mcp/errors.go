// Package mcp provides an MCP (Model Context Protocol) server adapter for ruyi.
// It exposes the chat front end's commands as tools so a chat bot or an
// AI assistant can feed messages and manage files over MCP.
package mcp

import "errors"

var (
	// ErrMissingMessageService is returned when the message service is not provided.
	ErrMissingMessageService = errors.New("mcp: message service is required")

	// ErrMissingFileBrowser is returned when the file browser is not provided.
	ErrMissingFileBrowser = errors.New("mcp: file browser is required")

	// ErrGitSyncUnavailable is returned by sync_repositories when no
	// git sync trigger is configured.
	ErrGitSyncUnavailable = errors.New("mcp: git sync is not configured")

	// ErrRepositoriesUnavailable is returned by list_repositories when no
	// repository service is configured.
	ErrRepositoriesUnavailable = errors.New("mcp: repository service is not configured")
)
