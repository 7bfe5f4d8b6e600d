package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

var reposCloned bool

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage the repositories in the gits folder",
}

var reposAddCmd = &cobra.Command{
	Use:   "add [owner/name]",
	Short: "Clone a GitHub repository into the gits folder",
	Long: `Clones a GitHub repository into the gits folder, where the next git
sync picks it up. Private repositories need a token; set one with
'ruyi settings github-token' or the GITHUB_TOKEN environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: runReposAdd,
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories the GitHub token can access",
	Args:  cobra.NoArgs,
	RunE:  runReposList,
}

func init() {
	reposListCmd.Flags().BoolVar(&reposCloned, "cloned", false, "list local clones instead")
	reposCmd.AddCommand(reposAddCmd)
	reposCmd.AddCommand(reposListCmd)
	rootCmd.AddCommand(reposCmd)
}

func runReposAdd(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	repo, err := repositoryService(cmd.Context(), settings).Add(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("%s is already cloned: %w", args[0], err)
	}
	if err != nil {
		return err
	}

	cmd.Printf("Cloned %s (%s) into %s.\n", repo.FullName, repo.DefaultBranch, settings.Paths.Gits)
	cmd.Println("Run 'ruyi sync-gits' to index it now.")
	return nil
}

func runReposList(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	svc := repositoryService(cmd.Context(), settings)

	if reposCloned {
		names, err := svc.Cloned()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("No repositories cloned.")
			return nil
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	}

	if settings.GitHub.Token == "" {
		cmd.Println("No GitHub token configured. Run 'ruyi settings github-token' first.")
		return nil
	}

	repos, err := svc.Available(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	if len(repos) == 0 {
		cmd.Println("No repositories found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tBRANCH\tVISIBILITY")
	for _, r := range repos {
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.FullName, r.DefaultBranch, visibility)
	}
	return w.Flush()
}
