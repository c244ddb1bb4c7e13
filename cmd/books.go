package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/session"
)

// runWithApp wires the library for a single command run
func runWithApp(opts *rootOptions, fn func(ctx context.Context, a *app, sc *session.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), opts.cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a, session.New(), args)
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   `add "Title, Author"`,
		Short: "Add a book",
		Long: `Adds a book entered as "Title, Author". The author may be a fragment of a
name in the author list; "Amerika, Boyle" is stored with the full name when
"Tom Coraghessan Boyle" is known. Cover and genre are looked up online.`,
		Example: `  bibliothek add "Amerika, Boyle"
  bibliothek add "Der Hobbit, Tolkien" --rating 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			res, err := a.library.AddBook(ctx, sc, strings.Join(args, " "), rating)
			if err != nil {
				return err
			}
			fmt.Printf("Gespeichert: %s / %s (%s)\n", res.Book.Title, res.Book.Author, res.Book.Genre)
			if res.Completed {
				fmt.Printf("Autor %q zu %q vervollständigt\n", res.Fragment, res.Book.Author)
			}
			if res.Book.CoverState() == models.CoverPresent {
				fmt.Printf("Cover: %s\n", res.Book.Cover)
			}
			return nil
		}),
	}

	cmd.Flags().IntVarP(&rating, "rating", "r", models.DefaultRating, "Rating from 1 to 5")

	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List books, optionally filtered by title or author",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			books, err := a.library.Search(ctx, sc, query)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TITEL\tAUTOR\tGENRE\tSTERNE\tCOVER")
			for _, b := range books {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", b.Title, b.Author, b.Genre, b.Rating, coverLabel(b))
			}
			return tw.Flush()
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print books as JSON")

	return cmd
}

func coverLabel(b models.Book) string {
	switch b.CoverState() {
	case models.CoverPresent:
		return "ja"
	case models.CoverMissing:
		return "nicht gefunden"
	default:
		return "-"
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TITLE...",
		Short: "Delete books by exact title",
		Long: `Deletes the first book whose title matches each argument exactly.
Titles that do not exist are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWithApp(opts, func(ctx context.Context, a *app, sc *session.Context, args []string) error {
			n, err := a.library.DeleteBooks(ctx, sc, args)
			if err != nil {
				return err
			}
			fmt.Printf("%d gelöscht\n", n)
			return nil
		}),
	}
}
