package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/bibliothek/internal/session"
)

func newAuthorsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors",
		Short: "Show and maintain the author list",
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			return printAuthors(ctx, a, sc)
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List authors with their number of books",
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			return printAuthors(ctx, a, sc)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add an author by full name",
		Args:  cobra.MinimumNArgs(1),
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			name := strings.Join(args, " ")
			if err := a.library.AddAuthor(ctx, sc, name); err != nil {
				return err
			}
			fmt.Printf("Autor gespeichert: %s\n", name)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME...",
		Short: "Replace the whole author list",
		Long:  `Overwrites the author list with the given names. Blank names are dropped.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			n, err := a.library.SaveAuthors(ctx, sc, args)
			if err != nil {
				return err
			}
			fmt.Printf("Autorenliste gespeichert (%d Namen)\n", n)
			return nil
		}),
	})

	return cmd
}

func printAuthors(ctx context.Context, a *app, sc *session.Context) error {
	summaries, err := a.library.Authors(ctx, sc)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBÜCHER")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\n", s.Name, s.BookCount)
	}
	return tw.Flush()
}

func newSyncAuthorsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-authors",
		Short: "Add every book author missing from the author list",
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			added, err := a.library.SyncAuthors(ctx, sc)
			if err != nil {
				return err
			}
			for _, name := range added {
				fmt.Printf("+ %s\n", name)
			}
			fmt.Printf("%d Autoren ergänzt\n", len(added))
			return nil
		}),
	}
}
