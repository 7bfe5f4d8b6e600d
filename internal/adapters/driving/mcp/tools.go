package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// ReplyOutput is the output schema for tools that answer with a short reply.
type ReplyOutput struct {
	Reply string `json:"reply"`
}

// IngestMessageInput is the input schema for the ingest_message tool.
type IngestMessageInput struct {
	AuthorID uint64 `json:"author_id" jsonschema:"numeric chat user id of the author"`
	Message  string `json:"message" jsonschema:"the message body"`
}

// IngestMessageOutput is the output schema for the ingest_message tool.
type IngestMessageOutput struct {
	Indexed bool `json:"indexed"`
}

// AuthorInput is the input schema for the opt_in and opt_out tools.
type AuthorInput struct {
	AuthorID uint64 `json:"author_id" jsonschema:"numeric chat user id"`
}

// ReadFileInput is the input schema for the read_file tool.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"file path relative to the files folder"`
}

// ReadFileOutput is the output schema for the read_file tool.
type ReadFileOutput struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

// WriteFileInput is the input schema for the write_file tool.
type WriteFileInput struct {
	Path     string `json:"path" jsonschema:"file path relative to the files folder"`
	Contents string `json:"contents" jsonschema:"the new file contents"`
}

// WriteFileOutput is the output schema for the write_file tool.
type WriteFileOutput struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// ListFilesInput is the input schema for the list_files tool.
type ListFilesInput struct {
	Page int `json:"page,omitempty" jsonschema:"zero-based page number (default 0)"`
}

// ListFilesOutput is the output schema for the list_files tool.
type ListFilesOutput struct {
	Page  int      `json:"page"`
	Files []string `json:"files"`
}

// SyncOutput is the output schema for the sync_repositories tool.
type SyncOutput struct {
	Started bool   `json:"started"`
	Reply   string `json:"reply"`
}

// RepositoriesOutput is the output schema for the list_repositories tool.
type RepositoriesOutput struct {
	Repositories []string `json:"repositories"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ping",
		Description: "Check that the bot is alive",
	}, s.handlePing)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_message",
		Description: "Index a chat message if its author has opted in. Messages starting with ! are commands and are never indexed",
	}, s.handleIngestMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "opt_in",
		Description: "Start indexing the messages of a chat user",
	}, s.handleOptIn)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "opt_out",
		Description: "Stop indexing the messages of a chat user and remove everything already indexed",
	}, s.handleOptOut)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_file",
		Description: "Read a file from the files folder",
	}, s.handleReadFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "write_file",
		Description: "Save a file into the files folder. The watcher indexes it like any other change",
	}, s.handleWriteFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_files",
		Description: "List the files folder, 10 entries per page, breadth-first",
	}, s.handleListFiles)

	if s.ports.GitSync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync_repositories",
			Description: "Pull every cloned repository and rebuild the git index. Limited to one run per cooldown",
		}, s.handleSyncRepositories)
	}

	if s.ports.Repositories != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_repositories",
			Description: "List the repositories cloned into the gits folder",
		}, s.handleListRepositories)
	}
}

func (s *Server) handlePing(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ReplyOutput, error) {
	return nil, ReplyOutput{Reply: "Pong!"}, nil
}

func (s *Server) handleIngestMessage(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input IngestMessageInput,
) (*mcp.CallToolResult, IngestMessageOutput, error) {
	indexed := s.ports.Messages.Observe(domain.AuthorID(input.AuthorID), input.Message)
	return nil, IngestMessageOutput{Indexed: indexed}, nil
}

func (s *Server) handleOptIn(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AuthorInput,
) (*mcp.CallToolResult, ReplyOutput, error) {
	if err := s.ports.Messages.OptIn(domain.AuthorID(input.AuthorID)); err != nil {
		return nil, ReplyOutput{}, err
	}
	return nil, ReplyOutput{Reply: "Added user id to opt in list"}, nil
}

func (s *Server) handleOptOut(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AuthorInput,
) (*mcp.CallToolResult, ReplyOutput, error) {
	if err := s.ports.Messages.OptOut(domain.AuthorID(input.AuthorID)); err != nil {
		return nil, ReplyOutput{}, err
	}
	return nil, ReplyOutput{Reply: "Removed user id from opt in list"}, nil
}

func (s *Server) handleReadFile(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ReadFileInput,
) (*mcp.CallToolResult, ReadFileOutput, error) {
	data, err := s.ports.Files.ReadFile(input.Path)
	if err != nil {
		return nil, ReadFileOutput{}, err
	}
	return nil, ReadFileOutput{Path: input.Path, Contents: string(data)}, nil
}

func (s *Server) handleWriteFile(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input WriteFileInput,
) (*mcp.CallToolResult, WriteFileOutput, error) {
	if err := s.ports.Files.WriteFile(input.Path, []byte(input.Contents)); err != nil {
		return nil, WriteFileOutput{}, err
	}
	return nil, WriteFileOutput{Path: input.Path, Bytes: len(input.Contents)}, nil
}

func (s *Server) handleListFiles(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListFilesInput,
) (*mcp.CallToolResult, ListFilesOutput, error) {
	files, err := s.ports.Files.ListFiles(input.Page)
	if err != nil {
		return nil, ListFilesOutput{}, err
	}
	if files == nil {
		files = []string{}
	}
	return nil, ListFilesOutput{Page: input.Page, Files: files}, nil
}

func (s *Server) handleSyncRepositories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	if s.ports.GitSync == nil {
		return nil, SyncOutput{}, ErrGitSyncUnavailable
	}
	// The run outlives the tool call.
	if !s.ports.GitSync.Trigger(context.WithoutCancel(ctx)) {
		return nil, SyncOutput{Reply: "Sync rejected: a run is in progress or the cooldown has not passed"}, nil
	}
	return nil, SyncOutput{Started: true, Reply: "Sync started"}, nil
}

func (s *Server) handleListRepositories(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, RepositoriesOutput, error) {
	if s.ports.Repositories == nil {
		return nil, RepositoriesOutput{}, ErrRepositoriesUnavailable
	}
	names, err := s.ports.Repositories.Cloned()
	if err != nil {
		return nil, RepositoriesOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, RepositoriesOutput{Repositories: names}, nil
}
