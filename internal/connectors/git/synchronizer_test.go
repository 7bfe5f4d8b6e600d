package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// fakeRepo describes the git answers for one repository directory.
type fakeRepo struct {
	pullErr error
	origin  string
	branch  string
	files   []string
}

// fakeRunner answers git commands from a table keyed by repository directory.
type fakeRunner struct {
	mu    sync.Mutex
	repos map[string]fakeRepo
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	repo := f.repos[filepath.Base(dir)]
	f.calls = append(f.calls, filepath.Base(dir)+": "+name+" "+strings.Join(args, " "))

	switch args[0] {
	case "pull":
		return nil, repo.pullErr
	case "remote":
		return []byte(repo.origin + "\n"), nil
	case "branch":
		return []byte(repo.branch + "\n"), nil
	case "ls-tree":
		return []byte(strings.Join(repo.files, "\x00") + "\x00"), nil
	}
	return nil, errors.New("unexpected command")
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recordingSink is a thread-safe GitDocumentSink.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) ResetGitIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, domain.Event{Kind: domain.EventResetGitIndex})
}

func (s *recordingSink) AddGitDocument(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, domain.Event{Kind: domain.EventAddGitDocument, Document: doc})
}

func (s *recordingSink) documents() []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []domain.Document
	for _, e := range s.events {
		if e.Kind == domain.EventAddGitDocument {
			docs = append(docs, e.Document)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Root+docs[i].Filename < docs[j].Root+docs[j].Filename })
	return docs
}

// fileExtractor reads every file except .png.
type fileExtractor struct{}

func (fileExtractor) Extract(path string) (string, bool) {
	if strings.HasSuffix(path, ".png") {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSynchronizer_Sync(t *testing.T) {
	t.Run("emits tracked files with github roots", func(t *testing.T) {
		gits := t.TempDir()
		writeFile(t, filepath.Join(gits, "repo", "README.md"), "readme")
		writeFile(t, filepath.Join(gits, "repo", "src", "main.rs"), "fn main() {}")
		writeFile(t, filepath.Join(gits, "repo", "untracked.txt"), "ignored")
		runner := &fakeRunner{repos: map[string]fakeRepo{
			"repo": {origin: "https://github.com/o/repo.git", branch: "main", files: []string{"README.md", "src/main.rs"}},
		}}
		sink := &recordingSink{}

		n, err := New(gits, runner, fileExtractor{}, sink).Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, n)

		docs := sink.documents()
		require.Len(t, docs, 2)
		assert.Equal(t, "README.md", docs[0].Filename)
		assert.Equal(t, "file://repo/", docs[0].Root)
		assert.Equal(t, "main.rs", docs[1].Filename)
		assert.Equal(t, "file://repo/src/", docs[1].Root)
		assert.Equal(t, "fn main() {}", docs[1].Contents)
		assert.Equal(t, "https://github.com/o/repo.git", docs[1].Origin)
		assert.Equal(t, "main", docs[1].Branch)
		assert.Equal(t, domain.NewDocumentID("main.rs", domain.FilesRoot("repo/src")), docs[1].ID)
	})

	t.Run("reset comes first", func(t *testing.T) {
		gits := t.TempDir()
		writeFile(t, filepath.Join(gits, "repo", "a.txt"), "a")
		runner := &fakeRunner{repos: map[string]fakeRepo{"repo": {files: []string{"a.txt"}}}}
		sink := &recordingSink{}

		_, err := New(gits, runner, fileExtractor{}, sink).Sync(context.Background())

		require.NoError(t, err)
		require.Len(t, sink.events, 2)
		assert.Equal(t, domain.EventResetGitIndex, sink.events[0].Kind)
		assert.Equal(t, domain.EventAddGitDocument, sink.events[1].Kind)
	})

	t.Run("pull failure skips the repository", func(t *testing.T) {
		gits := t.TempDir()
		writeFile(t, filepath.Join(gits, "broken", "a.txt"), "a")
		writeFile(t, filepath.Join(gits, "good", "b.txt"), "b")
		runner := &fakeRunner{repos: map[string]fakeRepo{
			"broken": {pullErr: errors.New("exit status 1"), files: []string{"a.txt"}},
			"good":   {files: []string{"b.txt"}},
		}}
		sink := &recordingSink{}

		n, err := New(gits, runner, fileExtractor{}, sink).Sync(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "git pull failed")
		assert.Equal(t, 1, n)
		docs := sink.documents()
		require.Len(t, docs, 1)
		assert.Equal(t, "b.txt", docs[0].Filename)
		for _, call := range runner.Calls() {
			if strings.HasPrefix(call, "broken:") {
				assert.Equal(t, "broken: git pull", call)
			}
		}
	})

	t.Run("unextractable files are skipped", func(t *testing.T) {
		gits := t.TempDir()
		writeFile(t, filepath.Join(gits, "repo", "logo.png"), "png")
		writeFile(t, filepath.Join(gits, "repo", "a.txt"), "a")
		runner := &fakeRunner{repos: map[string]fakeRepo{"repo": {files: []string{"logo.png", "a.txt"}}}}
		sink := &recordingSink{}

		n, err := New(gits, runner, fileExtractor{}, sink).Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("non utf-8 names are skipped", func(t *testing.T) {
		gits := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(gits, "repo"), 0o755))
		runner := &fakeRunner{repos: map[string]fakeRepo{"repo": {files: []string{"bad\xff.txt"}}}}
		sink := &recordingSink{}

		n, err := New(gits, runner, fileExtractor{}, sink).Sync(context.Background())

		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("plain files in the gits directory are ignored", func(t *testing.T) {
		gits := t.TempDir()
		writeFile(t, filepath.Join(gits, "notes.txt"), "x")
		runner := &fakeRunner{repos: map[string]fakeRepo{}}
		sink := &recordingSink{}

		n, err := New(gits, runner, fileExtractor{}, sink).Sync(context.Background())

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, runner.Calls())
	})

	t.Run("missing gits directory fails before reset", func(t *testing.T) {
		sink := &recordingSink{}

		_, err := New(filepath.Join(t.TempDir(), "missing"), &fakeRunner{}, fileExtractor{}, sink).Sync(context.Background())

		require.Error(t, err)
		assert.Empty(t, sink.events)
	})

	t.Run("cancelled context stops before the next repository", func(t *testing.T) {
		gits := t.TempDir()
		writeFile(t, filepath.Join(gits, "repo", "a.txt"), "a")
		runner := &fakeRunner{repos: map[string]fakeRepo{"repo": {files: []string{"a.txt"}}}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(gits, runner, fileExtractor{}, &recordingSink{}).Sync(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, runner.Calls())
	})

	t.Run("issues the expected git commands", func(t *testing.T) {
		gits := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(gits, "repo"), 0o755))
		runner := &fakeRunner{repos: map[string]fakeRepo{"repo": {}}}

		_, err := New(gits, runner, fileExtractor{}, &recordingSink{}).Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{
			"repo: git pull",
			"repo: git remote get-url origin",
			"repo: git branch --show-current",
			"repo: git ls-tree -r HEAD --name-only -z",
		}, runner.Calls())
	})
}

func TestTrackedFiles(t *testing.T) {
	assert.Equal(t, []string{"a.txt", "dir/b c.md"}, trackedFiles("a.txt\x00dir/b c.md\x00"))
	assert.Empty(t, trackedFiles(""))
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.GitSynchronizer = (*Synchronizer)(nil)
}
