package domain

import "time"

// PathSettings locates the directories and files the pipeline works on.
type PathSettings struct {
	// Files is the watched local file tree.
	Files string

	// Gits holds one cloned repository per subdirectory.
	Gits string

	// Data holds the SQLite metadata database.
	Data string

	// OptIn is the flat file listing opted-in chat authors.
	OptIn string
}

// SearchSettings configures the search backend.
type SearchSettings struct {
	// URL is the backend endpoint.
	URL string

	// APIKey authenticates against the backend. Optional.
	APIKey string

	// DocumentsIndex receives local file documents.
	DocumentsIndex string

	// GitIndex receives git-sourced documents and is reset on every git sync.
	GitIndex string

	// MessagesIndex receives chat messages.
	MessagesIndex string
}

// GitSettings configures the git synchroniser.
type GitSettings struct {
	// Cooldown is the minimum time between two sync runs.
	Cooldown time.Duration
}

// GitHubSettings configures repository provisioning.
type GitHubSettings struct {
	// Token is a personal access token. Optional for public repositories.
	Token string
}

// ChatSettings configures the chat front end.
type ChatSettings struct {
	// SelfID is the bot's own author id. Its messages are always indexed.
	// Zero means unset.
	SelfID AuthorID
}

// AppSettings holds all application configuration.
type AppSettings struct {
	Paths  PathSettings
	Search SearchSettings
	Git    GitSettings
	GitHub GitHubSettings
	Chat   ChatSettings
}

// DefaultAppSettings returns the default settings.
// Data defaults to empty, which the storage layer resolves under the home directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Paths: PathSettings{
			Files: "ruyi-files",
			Gits:  "ruyi-gits",
			OptIn: "opt-in.txt",
		},
		Search: SearchSettings{
			URL:            "http://localhost:7700",
			DocumentsIndex: "docs",
			GitIndex:       "gits",
			MessagesIndex:  "messages",
		},
		Git: GitSettings{
			Cooldown: DefaultGitSyncCooldown,
		},
	}
}
