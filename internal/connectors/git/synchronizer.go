// Package git re-extracts every repository cloned under the gits directory.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Ensure Synchronizer implements the interface.
var _ driven.GitSynchronizer = (*Synchronizer)(nil)

// gitBinary is the version control CLI.
const gitBinary = "git"

// Synchronizer pulls every repository and emits its tracked files.
type Synchronizer struct {
	dir       string
	runner    driven.CommandRunner
	extractor driven.Extractor
	sink      driven.GitDocumentSink

	// workers bounds parallel extraction within a repository.
	workers int
}

// New creates a synchronizer for the repositories under dir.
func New(dir string, runner driven.CommandRunner, extractor driven.Extractor, sink driven.GitDocumentSink) *Synchronizer {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Synchronizer{
		dir:       dir,
		runner:    runner,
		extractor: extractor,
		sink:      sink,
		workers:   workers,
	}
}

// Dir returns the gits directory.
func (s *Synchronizer) Dir() string {
	return s.dir
}

// Sync resets the git index and emits every tracked file of every
// repository. A repository that fails to pull is logged and skipped.
// The returned error joins the per-repository failures; it is only
// fatal when the gits directory cannot be read.
func (s *Synchronizer) Sync(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read gits directory: %w", err)
	}

	s.sink.ResetGitIndex()

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return 0, fmt.Errorf("create extraction pool: %w", err)
	}
	defer pool.Release()

	var (
		total int
		errs  []error
	)
	for _, entry := range entries {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if !entry.IsDir() {
			continue
		}

		n, err := s.syncRepository(ctx, pool, entry.Name())
		total += n
		if err != nil {
			logger.Error("git sync of %s: %v", entry.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
		}
	}

	return total, errors.Join(errs...)
}

// syncRepository pulls one repository and emits its tracked files.
func (s *Synchronizer) syncRepository(ctx context.Context, pool *ants.Pool, name string) (int, error) {
	repoDir := filepath.Join(s.dir, name)

	if _, err := s.git(ctx, repoDir, "pull"); err != nil {
		return 0, fmt.Errorf("git pull failed: %w", err)
	}

	origin, err := s.git(ctx, repoDir, "remote", "get-url", "origin")
	if err != nil {
		return 0, fmt.Errorf("read origin: %w", err)
	}
	branch, err := s.git(ctx, repoDir, "branch", "--show-current")
	if err != nil {
		return 0, fmt.Errorf("read branch: %w", err)
	}
	listing, err := s.git(ctx, repoDir, "ls-tree", "-r", "HEAD", "--name-only", "-z")
	if err != nil {
		return 0, fmt.Errorf("list tracked files: %w", err)
	}

	origin = strings.TrimSpace(origin)
	branch = strings.TrimSpace(branch)

	var (
		wg      sync.WaitGroup
		emitted atomic.Int64
	)
	for _, rel := range trackedFiles(listing) {
		if !utf8.ValidString(rel) {
			logger.Error("file name of %q in %s is not valid UTF-8", rel, name)
			continue
		}

		full := filepath.Join(repoDir, filepath.FromSlash(rel))
		root := domain.GitHubRoot(origin, branch, path.Join(name, path.Dir(rel)))
		filename := path.Base(rel)

		wg.Add(1)
		task := func() {
			defer wg.Done()
			text, ok := s.extractor.Extract(full)
			if !ok {
				return
			}
			s.sink.AddGitDocument(domain.NewDocument(filename, root, text))
			emitted.Add(1)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			logger.Error("failed to queue %s: %v", full, err)
		}
	}
	wg.Wait()

	return int(emitted.Load()), nil
}

func (s *Synchronizer) git(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := s.runner.Run(ctx, dir, gitBinary, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// trackedFiles splits NUL-separated ls-tree output.
func trackedFiles(listing string) []string {
	var files []string
	for _, f := range strings.Split(listing, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}
