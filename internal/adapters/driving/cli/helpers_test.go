package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	searchmem "github.com/manglemix/ruyi-bot-3/internal/adapters/driven/search/memory"
	storagemem "github.com/manglemix/ruyi-bot-3/internal/adapters/driven/storage/memory"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/core/services"
)

// testEnv is an isolated configuration rooted in a temp directory.
type testEnv struct {
	dir     string
	config  *storagemem.ConfigStore
	backend *searchmem.Backend
	runner  *fakeGitRunner
}

func (e *testEnv) filesDir() string { return filepath.Join(e.dir, "files") }
func (e *testEnv) gitsDir() string  { return filepath.Join(e.dir, "gits") }
func (e *testEnv) optInPath() string {
	return filepath.Join(e.dir, "opt-in.txt")
}

// setupTestServices points every command at temp paths, the in-memory
// search backend and a fake git.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("MEILI_MASTER_KEY", "")

	env := &testEnv{
		dir:     t.TempDir(),
		config:  storagemem.NewConfigStore(),
		backend: searchmem.New(),
		runner:  &fakeGitRunner{repos: make(map[string]fakeGitRepo)},
	}
	require.NoError(t, env.config.Set("paths.files", env.filesDir()))
	require.NoError(t, env.config.Set("paths.gits", env.gitsDir()))
	require.NoError(t, env.config.Set("paths.data", filepath.Join(env.dir, "data")))
	require.NoError(t, env.config.Set("paths.opt_in", env.optInPath()))

	oldSettings := settingsService
	oldRunner := commandRunner
	oldBackend := newSearchBackend
	oldHost := newRepositoryHost

	Configure(services.NewSettingsService(env.config), env.runner)
	newSearchBackend = func(domain.SearchSettings) driven.SearchBackend {
		return env.backend
	}

	t.Cleanup(func() {
		settingsService = oldSettings
		commandRunner = oldRunner
		newSearchBackend = oldBackend
		newRepositoryHost = oldHost
	})
	return env
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// fakeGitRepo describes the answers of git for one repository.
type fakeGitRepo struct {
	origin string
	branch string
	files  []string
}

// fakeGitRunner answers git commands without running git. Clones create
// the destination directory.
type fakeGitRunner struct {
	mu    sync.Mutex
	repos map[string]fakeGitRepo
	calls []string
	envs  [][]string
}

func (f *fakeGitRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return f.RunWithEnv(ctx, dir, nil, name, args...)
}

func (f *fakeGitRunner) RunWithEnv(_ context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	f.envs = append(f.envs, env)

	repo := f.repos[filepath.Base(dir)]
	for _, arg := range args {
		switch arg {
		case "clone":
			return nil, os.MkdirAll(args[len(args)-1], 0o755)
		case "pull":
			return nil, nil
		case "remote":
			return []byte(repo.origin + "\n"), nil
		case "branch":
			return []byte(repo.branch + "\n"), nil
		case "ls-tree":
			return []byte(strings.Join(repo.files, "\x00") + "\x00"), nil
		}
	}
	return nil, nil
}

func (f *fakeGitRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGitRunner) Envs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.envs...)
}

// addRepo creates a repository directory with files and registers git answers for it.
func (e *testEnv) addRepo(t *testing.T, name string, files map[string]string) {
	t.Helper()
	repo := fakeGitRepo{origin: "https://example.com/" + name + ".git", branch: "main"}
	for rel, content := range files {
		full := filepath.Join(e.gitsDir(), name, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		repo.files = append(repo.files, rel)
	}
	e.runner.mu.Lock()
	e.runner.repos[name] = repo
	e.runner.mu.Unlock()
}
