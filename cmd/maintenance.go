package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/bibliothek/internal/backfill"
	"github.com/shelfkeeper/bibliothek/internal/session"
)

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Merge duplicate and short author spellings",
		Long: `Normalizes author names in the author list and the book list and merges
short forms into the longest full name containing them, so "Berkel" becomes
"Christian Berkel". When a short form is contained in several unrelated names
the longest one wins and a warning is logged.`,
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			res, err := a.library.Reconcile(ctx, sc)
			if err != nil {
				return err
			}
			for _, m := range res.Merges {
				fmt.Printf("%s -> %s\n", m.From, m.To)
			}
			fmt.Printf("%d Einträge angepasst, %d fehlgeschlagen, %d Autoren\n", res.RowsTouched, res.RowsFailed, len(res.Authors))
			return nil
		}),
	}
}

func newBackfillCmd(opts *rootOptions) *cobra.Command {
	var (
		all           bool
		retryNotFound bool
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Look up missing covers and genres",
		Long: `Looks up covers for books that have not been checked yet. Books whose
lookup found nothing are marked and skipped on later runs unless
--retry-not-found is given.`,
		Example: `  # Process a small batch
  bibliothek backfill

  # Process everything, including books marked as not found
  bibliothek backfill --all --retry-not-found`,
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			o := backfill.Options{Limit: limit, RetryNotFound: retryNotFound}
			if all {
				o.Limit = 0
			} else if o.Limit <= 0 {
				o.Limit = a.library.BackfillBatch
			}

			res, err := a.library.Backfill(ctx, sc, o)
			if err != nil {
				return err
			}
			fmt.Printf("%d geprüft, %d Cover gefunden, %d ohne Treffer, %d fehlgeschlagen\n",
				res.Scanned, res.Filled, res.MarkedNotFound, res.Failed)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "Process every pending book")
	cmd.Flags().BoolVar(&retryNotFound, "retry-not-found", false, "Also retry books marked as not found")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum books to process (default backfill.batch)")

	return cmd
}
