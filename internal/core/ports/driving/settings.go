package driving

import "github.com/manglemix/ruyi-bot-3/internal/core/domain"

// SettingsService exposes application settings resolved from configuration.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// GetSchedulerConfig returns scheduler settings with defaults applied.
	GetSchedulerConfig() domain.SchedulerConfig

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// SetGitHubToken stores the token used to list and clone repositories.
	SetGitHubToken(token string) error
}
