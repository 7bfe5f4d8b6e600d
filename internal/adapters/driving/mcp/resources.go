package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ruyi resources.
	uriScheme = "ruyi://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "opt-in",
		Name:        "opt-in",
		Description: "Chat user ids whose messages are indexed",
		MIMEType:    "application/json",
	}, s.handleOptInResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "files/{+path}",
		Name:        "file-content",
		Description: "Content of a file in the files folder",
		MIMEType:    "text/plain",
	}, s.handleFileResource)
}

// handleOptInResource returns the opt-in set.
func (s *Server) handleOptInResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	authors := s.ports.Messages.OptedIn()
	if authors == nil {
		authors = []domain.AuthorID{}
	}

	data, err := json.MarshalIndent(authors, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling opt-in set: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleFileResource returns the content of a file in the files folder.
func (s *Server) handleFileResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract path from URI: ruyi://files/{path}
	rel := extractFilePath(req.Params.URI)
	if rel == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := s.ports.Files.ReadFile(rel)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     string(data),
		}},
	}, nil
}

// extractFilePath extracts the relative path from a URI like ruyi://files/{path}.
func extractFilePath(uri string) string {
	const prefix = uriScheme + "files/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
