package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shelfkeeper/bibliothek/internal/config"
)

// rootOptions carries the persistent flags and the loaded config to every
// subcommand
type rootOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bibliothek",
		Short: "Personal book list with author completion and cover lookup",
		Long: `Bibliothek keeps a personal list of books and a master list of authors
in a Google Sheets spreadsheet or a local SQLite file.

Books are entered as "Title, Author"; a surname is enough when the full name
is in the author list. Covers and genres are looked up on Google Books and
Open Library, and a maintenance pass merges duplicate author spellings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := cfg.Level()
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newAuthorsCmd(opts))
	cmd.AddCommand(newSyncAuthorsCmd(opts))
	cmd.AddCommand(newReconcileCmd(opts))
	cmd.AddCommand(newBackfillCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))

	return cmd
}
