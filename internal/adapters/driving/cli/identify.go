package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

var identifyBase string

var identifyCmd = &cobra.Command{
	Use:   "identify [path]",
	Short: "Print the root and document id of a file",
	Long: `Computes the provenance root and document id the watcher would assign
to a file. The base defaults to the parent of the files folder, so the
folder's own name is the first root segment.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().StringVar(&identifyBase, "base", "", "directory roots are relative to")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]

	base := identifyBase
	if base == "" {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		files, err := filepath.Abs(settings.Paths.Files)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", settings.Paths.Files, err)
		}
		base = filepath.Dir(files)
	}

	root, err := domain.NewFileRoot(path, base)
	if err != nil {
		return err
	}

	cmd.Printf("root: %s\n", root)
	cmd.Printf("id:   %s\n", domain.NewDocumentID(filepath.Base(path), root))
	return nil
}
