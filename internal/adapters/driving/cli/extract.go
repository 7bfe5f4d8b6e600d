package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/normalisers"
)

var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Print the text extracted from a file",
	Long: `Runs the content extractor on a single file and prints the text that
would be indexed. Supported extensions: plain text and source files, pdf
(requires pdftotext) and docx.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, ok := normalisers.Default(commandRunner).Extract(args[0])
	if !ok {
		return fmt.Errorf("nothing extracted from %s", args[0])
	}
	cmd.Print(text)
	return nil
}
