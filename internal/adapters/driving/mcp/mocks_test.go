package mcp

import (
	"context"
	"sort"
	"strings"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// mockMessageService is a mock implementation of driving.MessageService.
type mockMessageService struct {
	optedIn  map[domain.AuthorID]bool
	observed []domain.Message
	err      error
}

func newMockMessageService(authors ...domain.AuthorID) *mockMessageService {
	m := &mockMessageService{optedIn: make(map[domain.AuthorID]bool)}
	for _, a := range authors {
		m.optedIn[a] = true
	}
	return m
}

func (m *mockMessageService) Observe(author domain.AuthorID, body string) bool {
	if strings.HasPrefix(body, "!") || !m.optedIn[author] {
		return false
	}
	m.observed = append(m.observed, domain.NewMessage(author, body))
	return true
}

func (m *mockMessageService) OptIn(author domain.AuthorID) error {
	if m.err != nil {
		return m.err
	}
	m.optedIn[author] = true
	return nil
}

func (m *mockMessageService) OptOut(author domain.AuthorID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.optedIn, author)
	return nil
}

func (m *mockMessageService) IsOptedIn(author domain.AuthorID) bool {
	return m.optedIn[author]
}

func (m *mockMessageService) OptedIn() []domain.AuthorID {
	var authors []domain.AuthorID
	for a := range m.optedIn {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i] < authors[j] })
	return authors
}

// mockFileBrowser is a mock implementation of driving.FileBrowser.
type mockFileBrowser struct {
	files   map[string]string
	pages   [][]string
	written map[string]string
	err     error
}

func newMockFileBrowser() *mockFileBrowser {
	return &mockFileBrowser{
		files:   make(map[string]string),
		written: make(map[string]string),
	}
}

func (m *mockFileBrowser) ReadFile(rel string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.files[rel]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return []byte(data), nil
}

func (m *mockFileBrowser) WriteFile(rel string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.written[rel] = string(data)
	return nil
}

func (m *mockFileBrowser) ListFiles(page int) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if page >= len(m.pages) {
		return nil, nil
	}
	return m.pages[page], nil
}

// mockGitSync is a mock implementation of driving.GitSyncTrigger.
type mockGitSync struct {
	accept   bool
	triggers int
}

func (m *mockGitSync) Trigger(_ context.Context) bool {
	m.triggers++
	return m.accept
}

func (m *mockGitSync) Wait() {}

// mockRepositoryService is a mock implementation of driving.RepositoryService.
type mockRepositoryService struct {
	cloned []string
	err    error
}

func (m *mockRepositoryService) Add(_ context.Context, _ string) (*domain.Repository, error) {
	return nil, m.err
}

func (m *mockRepositoryService) Available(_ context.Context) ([]domain.Repository, error) {
	return nil, m.err
}

func (m *mockRepositoryService) Cloned() ([]string, error) {
	return m.cloned, m.err
}

func newTestPorts() *Ports {
	return &Ports{
		Messages: newMockMessageService(),
		Files:    newMockFileBrowser(),
	}
}
