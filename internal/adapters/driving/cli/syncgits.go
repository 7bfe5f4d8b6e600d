package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/storage/sqlite"
	"github.com/manglemix/ruyi-bot-3/internal/connectors/git"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/services"
	"github.com/manglemix/ruyi-bot-3/internal/normalisers"
)

var (
	syncGitsForce bool
	historyLimit  int
)

var syncGitsCmd = &cobra.Command{
	Use:   "sync-gits",
	Short: "Re-sync every cloned repository into the git index",
	Long: `Pulls every repository in the gits folder, drops the git index and
re-indexes every tracked file.

Runs are limited to one per cooldown (git.cooldown, default 30m), counted
from the start of the last recorded run. Use --force to ignore it.`,
	Args: cobra.NoArgs,
	RunE: runSyncGits,
}

var syncGitsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent git sync runs",
	Args:  cobra.NoArgs,
	RunE:  runSyncGitsHistory,
}

func init() {
	syncGitsCmd.Flags().BoolVar(&syncGitsForce, "force", false, "ignore the cooldown")
	syncGitsHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs to show")
	syncGitsCmd.AddCommand(syncGitsHistoryCmd)
	rootCmd.AddCommand(syncGitsCmd)
}

func runSyncGits(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(settings.Paths.Data)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()
	history := store.SchedulerStore()

	channels := services.NewChannels()
	syncer := git.New(settings.Paths.Gits, commandRunner, normalisers.Default(commandRunner), channels)
	gate := services.NewGitSyncScheduler(syncer, nil, history, settings.Git.Cooldown)

	if !syncGitsForce {
		last, err := history.GetTaskHistory(ctx, domain.TaskIDGitSync, 1)
		if err != nil {
			return fmt.Errorf("reading sync history: %w", err)
		}
		if len(last) > 0 {
			gate.Restore(last[0].StartedAt)
		}
	}

	dispatcher := services.NewDispatcher(newSearchBackend(settings.Search), channels, settings.Search)
	drained := make(chan error, 1)
	go func() {
		drained <- dispatcher.Run(ctx)
	}()

	started := gate.Trigger(ctx)
	gate.Wait()
	channels.Close()
	if err := <-drained; err != nil {
		return fmt.Errorf("writing to search backend: %w", err)
	}

	if !started {
		last, _ := gate.LastStarted()
		return fmt.Errorf("%w: last run started %s ago", domain.ErrSyncInProgress,
			time.Since(last).Round(time.Second))
	}

	results, err := history.GetTaskHistory(ctx, domain.TaskIDGitSync, 1)
	if err != nil {
		return fmt.Errorf("reading sync history: %w", err)
	}
	if len(results) == 0 {
		return errors.New("sync finished without a recorded result")
	}
	result := results[0]
	if !result.Success {
		return fmt.Errorf("sync failed after %d documents: %s", result.ItemsProcessed, result.Error)
	}

	cmd.Printf("Synchronised %d documents from %s.\n", result.ItemsProcessed, settings.Paths.Gits)
	return nil
}

func runSyncGitsHistory(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(settings.Paths.Data)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	results, err := store.SchedulerStore().GetTaskHistory(cmd.Context(), domain.TaskIDGitSync, historyLimit)
	if err != nil {
		return fmt.Errorf("reading sync history: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No git sync runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tDURATION\tDOCUMENTS\tSTATUS")
	for i := range results {
		r := &results[i]
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Millisecond),
			r.ItemsProcessed,
			status)
	}
	return w.Flush()
}
