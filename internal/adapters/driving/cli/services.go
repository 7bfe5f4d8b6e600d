package cli

import (
	"context"
	"fmt"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/command"
	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/config/file"
	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/search/meili"
	"github.com/manglemix/ruyi-bot-3/internal/connectors/github"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
	"github.com/manglemix/ruyi-bot-3/internal/core/services"
)

// Service handles shared by the commands. Configure sets them up front;
// otherwise they are built from the config directory on first use.
var (
	settingsService driving.SettingsService
	commandRunner   driven.EnvCommandRunner = command.NewRunner()

	newSearchBackend = func(s domain.SearchSettings) driven.SearchBackend {
		return meili.New(s.URL, s.APIKey)
	}

	newRepositoryHost = func(ctx context.Context, token string) driven.RepositoryHost {
		return github.NewClient(ctx, token)
	}
)

// Configure injects the settings service and the command runner.
// A nil runner keeps the default exec-based one.
func Configure(settings driving.SettingsService, runner driven.EnvCommandRunner) {
	settingsService = settings
	if runner != nil {
		commandRunner = runner
	}
}

// loadSettings resolves the application settings, reading the config
// directory if no settings service was configured.
func loadSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		settingsService = services.NewSettingsService(store)
	}
	return settingsService.Get()
}

// repositoryService builds the repository service for the configured gits directory.
func repositoryService(ctx context.Context, settings *domain.AppSettings) *services.RepositoryService {
	host := newRepositoryHost(ctx, settings.GitHub.Token)
	return services.NewRepositoryService(host, commandRunner, settings.Paths.Gits, settings.GitHub.Token)
}
