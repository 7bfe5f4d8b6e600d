package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View the resolved configuration and store credentials.

Settings are read from config.toml in the config directory (--config).
Any key can be overridden with an environment variable: search.url is
RUYI_SEARCH_URL.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "github-token",
	Short: "Store a GitHub personal access token",
	Long: `Prompts for a GitHub personal access token and stores it in the config
file. The token is used to list repositories and to clone private ones.`,
	Args: cobra.NoArgs,
	RunE: runSettingsToken,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	scheduler := settingsService.GetSchedulerConfig()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Files: %s\n", settings.Paths.Files)
	cmd.Printf("  Gits: %s\n", settings.Paths.Gits)
	cmd.Printf("  Data: %s\n", settings.Paths.Data)
	cmd.Printf("  Opt-in list: %s\n", settings.Paths.OptIn)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  URL: %s\n", settings.Search.URL)
	cmd.Printf("  API Key: %s\n", maskSecret(settings.Search.APIKey))
	cmd.Printf("  Indexes: %s, %s, %s\n",
		settings.Search.DocumentsIndex, settings.Search.GitIndex, settings.Search.MessagesIndex)
	cmd.Println()

	cmd.Println("[Git]")
	cmd.Printf("  Cooldown: %s\n", settings.Git.Cooldown)
	if scheduler.Enabled {
		cmd.Printf("  Scheduled sync: every %s\n", scheduler.GetTaskConfig(domain.TaskIDGitSync).Interval)
	} else {
		cmd.Printf("  Scheduled sync: disabled\n")
	}
	cmd.Printf("  GitHub token: %s\n", maskSecret(settings.GitHub.Token))
	cmd.Println()

	cmd.Println("[Chat]")
	if settings.Chat.SelfID != 0 {
		cmd.Printf("  Bot user id: %d\n", settings.Chat.SelfID)
	} else {
		cmd.Printf("  Bot user id: (not set)\n")
	}

	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	if _, err := loadSettings(); err != nil {
		return err
	}

	cmd.Print("GitHub token: ")
	token := readSecret(cmd.InOrStdin())
	cmd.Println()
	if token == "" {
		return errors.New("no token entered")
	}

	if err := settingsService.SetGitHubToken(token); err != nil {
		return err
	}
	cmd.Println("GitHub token saved.")
	return nil
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
