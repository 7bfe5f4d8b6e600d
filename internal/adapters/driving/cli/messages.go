package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/config/file"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/services"
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Manage which chat users have their messages indexed",
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List opted-in user ids",
	Args:  cobra.NoArgs,
	RunE:  runMessagesList,
}

var messagesOptInCmd = &cobra.Command{
	Use:   "opt-in [author-id]",
	Short: "Start indexing a user's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesOptIn,
}

var messagesForgetCmd = &cobra.Command{
	Use:   "forget [author-id]",
	Short: "Opt a user out and delete their indexed messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesForget,
}

func init() {
	messagesCmd.AddCommand(messagesListCmd)
	messagesCmd.AddCommand(messagesOptInCmd)
	messagesCmd.AddCommand(messagesForgetCmd)
	rootCmd.AddCommand(messagesCmd)
}

func parseAuthorID(s string) (domain.AuthorID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: author id %q", domain.ErrInvalidInput, s)
	}
	return domain.AuthorID(id), nil
}

// newMessageTracker loads the opt-in file behind a tracker writing to channels.
func newMessageTracker(settings *domain.AppSettings, channels *services.Channels) (*services.MessageTracker, error) {
	return services.NewMessageTracker(file.NewOptInStore(settings.Paths.OptIn), channels, settings.Chat.SelfID)
}

func runMessagesList(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	authors, err := file.NewOptInStore(settings.Paths.OptIn).Load()
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		cmd.Println("No users opted in.")
		return nil
	}
	for _, a := range authors {
		cmd.Println(uint64(a))
	}
	return nil
}

func runMessagesOptIn(cmd *cobra.Command, args []string) error {
	author, err := parseAuthorID(args[0])
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	channels := services.NewChannels()
	defer channels.Close()

	tracker, err := newMessageTracker(settings, channels)
	if err != nil {
		return err
	}
	if err := tracker.OptIn(author); err != nil {
		return err
	}

	cmd.Printf("Added %d to the opt-in list.\n", author)
	return nil
}

func runMessagesForget(cmd *cobra.Command, args []string) error {
	author, err := parseAuthorID(args[0])
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	channels := services.NewChannels()
	tracker, err := newMessageTracker(settings, channels)
	if err != nil {
		channels.Close()
		return err
	}

	optErr := tracker.OptOut(author)
	channels.Close()

	dispatcher := services.NewDispatcher(newSearchBackend(settings.Search), channels, settings.Search)
	dispatcher.Prepare(cmd.Context())
	if err := dispatcher.Run(cmd.Context()); err != nil {
		return fmt.Errorf("writing to search backend: %w", err)
	}
	if optErr != nil {
		return optErr
	}

	cmd.Printf("Removed %d from the opt-in list and deleted their messages.\n", author)
	return nil
}
