package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/config/file"
	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/storage/sqlite"
	"github.com/manglemix/ruyi-bot-3/internal/adapters/driving/mcp"
	"github.com/manglemix/ruyi-bot-3/internal/connectors/filesystem"
	"github.com/manglemix/ruyi-bot-3/internal/connectors/git"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/services"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
	"github.com/manglemix/ruyi-bot-3/internal/normalisers"
)

// pinger is implemented by search backends that can report their health.
type pinger interface {
	Ping(ctx context.Context) error
}

// pipeline is the set of long-running components behind serve and mcp serve.
// Every producer pushes into channels; the dispatcher is the only writer
// to the search backend.
type pipeline struct {
	settings   *domain.AppSettings
	channels   *services.Channels
	dispatcher *services.Dispatcher
	store      *sqlite.Store
	watcher    *filesystem.Watcher
	gitSync    *services.GitSyncScheduler
	scheduler  *services.Scheduler
	messages   *services.MessageTracker
	files      *services.FileBrowser
	repos      *services.RepositoryService
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{settings.Paths.Files, settings.Paths.Gits} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	// Later failures to read the gits directory only fail that sync run.
	if _, err := os.ReadDir(settings.Paths.Gits); err != nil {
		return nil, fmt.Errorf("read gits directory: %w", err)
	}

	backend := newSearchBackend(settings.Search)
	if p, ok := backend.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			logger.Warn("%v", err)
		}
	}

	store, err := sqlite.NewStore(settings.Paths.Data)
	if err != nil {
		return nil, fmt.Errorf("opening metadata store: %w", err)
	}

	channels := services.NewChannels()
	extractor := normalisers.Default(commandRunner)

	messages, err := services.NewMessageTracker(file.NewOptInStore(settings.Paths.OptIn), channels, settings.Chat.SelfID)
	if err != nil {
		store.Close()
		return nil, err
	}

	syncer := git.New(settings.Paths.Gits, commandRunner, extractor, channels)
	gitSync := services.NewGitSyncScheduler(syncer, nil, store.SchedulerStore(), settings.Git.Cooldown)

	return &pipeline{
		settings:   settings,
		channels:   channels,
		dispatcher: services.NewDispatcher(backend, channels, settings.Search),
		store:      store,
		watcher:    filesystem.New(settings.Paths.Files, extractor, channels),
		gitSync:    gitSync,
		scheduler:  services.NewScheduler(settingsService.GetSchedulerConfig(), store.SchedulerStore(), gitSync),
		messages:   messages,
		files:      services.NewFileBrowser(settings.Paths.Files),
		repos:      repositoryService(ctx, settings),
	}, nil
}

// run starts every component and blocks until ctx is cancelled or one of
// them fails. Producers are stopped first; the dispatcher then drains
// whatever is still queued before run returns.
func (p *pipeline) run(ctx context.Context, extra ...func(context.Context) error) error {
	p.dispatcher.Prepare(ctx)

	drained := make(chan error, 1)
	go func() {
		drained <- p.dispatcher.Run(context.WithoutCancel(ctx))
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.watcher.Close()
		return p.watcher.Run(gctx)
	})
	g.Go(func() error {
		return p.scheduler.Start(gctx)
	})
	for _, fn := range extra {
		g.Go(func() error {
			return fn(gctx)
		})
	}

	err := g.Wait()
	p.gitSync.Wait()
	p.channels.Close()

	if derr := <-drained; err == nil {
		err = derr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the metadata store.
func (p *pipeline) Close() error {
	return p.store.Close()
}

// mcpPorts exposes the pipeline's services to the MCP server.
func (p *pipeline) mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Messages:     p.messages,
		Files:        p.files,
		GitSync:      p.gitSync,
		Repositories: p.repos,
	}
}
