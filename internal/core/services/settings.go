package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyPathFiles      = "paths.files"
	keyPathGits       = "paths.gits"
	keyPathData       = "paths.data"
	keyPathOptIn      = "paths.opt_in"
	keySearchURL      = "search.url"
	keySearchAPIKey   = "search.api_key"
	keyDocumentsIndex = "search.documents_index"
	keyGitIndex       = "search.git_index"
	keyMessagesIndex  = "search.messages_index"
	keyGitCooldown    = "git.cooldown"
	keyGitHubToken    = "github.token"
	keyChatSelfID     = "chat.self_id"
)

// Environment fallbacks for secrets left out of the config file.
const (
	envSearchAPIKey = "MEILI_MASTER_KEY"
	envGitHubToken  = "GITHUB_TOKEN"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	selfID, err := s.getAuthorID(keyChatSelfID)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Paths: domain.PathSettings{
			Files: s.getString(keyPathFiles, defaults.Paths.Files),
			Gits:  s.getString(keyPathGits, defaults.Paths.Gits),
			Data:  s.getString(keyPathData, s.defaultDataDir()),
			OptIn: s.getString(keyPathOptIn, defaults.Paths.OptIn),
		},
		Search: domain.SearchSettings{
			URL:            s.getString(keySearchURL, defaults.Search.URL),
			APIKey:         s.getString(keySearchAPIKey, s.getenv(envSearchAPIKey)),
			DocumentsIndex: s.getString(keyDocumentsIndex, defaults.Search.DocumentsIndex),
			GitIndex:       s.getString(keyGitIndex, defaults.Search.GitIndex),
			MessagesIndex:  s.getString(keyMessagesIndex, defaults.Search.MessagesIndex),
		},
		Git: domain.GitSettings{
			Cooldown: s.getDuration(keyGitCooldown, defaults.Git.Cooldown),
		},
		GitHub: domain.GitHubSettings{
			Token: s.getString(keyGitHubToken, s.getenv(envGitHubToken)),
		},
		Chat: domain.ChatSettings{
			SelfID: selfID,
		},
	}

	return settings, nil
}

// SetGitHubToken stores a personal access token for repository provisioning.
func (s *SettingsService) SetGitHubToken(token string) error {
	if err := s.configStore.Set(keyGitHubToken, token); err != nil {
		return fmt.Errorf("save github token: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.Paths.Data = s.defaultDataDir()
	return defaults
}

// defaultDataDir places the data directory next to the config file.
func (s *SettingsService) defaultDataDir() string {
	return filepath.Join(filepath.Dir(s.configStore.Path()), "data")
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d := s.configStore.GetDuration(key)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// getAuthorID accepts either a TOML integer or a decimal string, since
// chat ids can exceed what some editors keep exact in a number.
func (s *SettingsService) getAuthorID(key string) (domain.AuthorID, error) {
	val, exists := s.configStore.Get(key)
	if !exists {
		return 0, nil
	}
	switch v := val.(type) {
	case string:
		if v == "" {
			return 0, nil
		}
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		return domain.AuthorID(id), nil
	default:
		n := s.configStore.GetInt(key)
		if n < 0 {
			return 0, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		return domain.AuthorID(n), nil
	}
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	defaults.Enabled = s.getBool("scheduler.enabled", defaults.Enabled)

	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDGitSync: "git_sync",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]
		taskCfg.Enabled = s.getBool(prefix+"enabled", taskCfg.Enabled)
		taskCfg.Interval = s.getDuration(prefix+"interval", taskCfg.Interval)

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}
