package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/bibliothek/internal/session"
	"github.com/shelfkeeper/bibliothek/internal/transfer"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the library as YAML or Parquet",
		Example: `  bibliothek export > library.yaml
  bibliothek export --format parquet --output books.parquet`,
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			books, err := a.library.Search(ctx, sc, "")
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "yaml":
				names, err := a.store.Authors(ctx)
				if err != nil {
					return fmt.Errorf("failed to read authors: %w", err)
				}
				return transfer.WriteYAML(w, books, names)
			case "parquet":
				return transfer.WriteParquet(w, books)
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml or parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")

	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import books from a JSONL or Parquet file",
		Long: `Appends books from a .jsonl or .parquet file. Authors are completed against
the author list; covers and genres are left for the next backfill.`,
		Args: cobra.ExactArgs(1),
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			books, err := transfer.NewLoader(args[0]).Load()
			if err != nil {
				return err
			}
			res, err := a.library.ImportBooks(ctx, sc, books)
			if err != nil {
				return err
			}
			fmt.Printf("%d importiert, %d übersprungen, %d fehlgeschlagen\n", res.Imported, res.Skipped, res.Failed)
			return nil
		}),
	}
}
