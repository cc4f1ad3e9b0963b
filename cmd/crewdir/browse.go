package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/crewdir/internal/app"
	"github.com/heartmarshall/crewdir/internal/domain"
	"github.com/heartmarshall/crewdir/internal/service/directory"
)

func newBrowseCmd(root *rootOptions) *cobra.Command {
	var (
		section string
		search  string
		pages   int
		refresh bool
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List a directory section, filtered and grouped into buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 1 {
				return domain.NewValidationError("pages", "must be at least 1")
			}
			fs, err := filters.filterSet(cmd.Flags())
			if err != nil {
				return err
			}

			engine, err := root.engine(cmd, app.Options{Section: section, Search: search, Filters: fs})
			if err != nil {
				return err
			}
			defer engine.Browser.Close()

			ctx := cmd.Context()
			engine.Open(ctx)
			if refresh {
				if err := engine.Browser.Refresh(ctx); err != nil {
					engine.Logger.WarnContext(ctx, "refresh failed", "error", err)
				}
			}
			for i := 1; i < pages && engine.Browser.View().HasMore; i++ {
				if err := engine.Browser.LoadMore(ctx); err != nil {
					break
				}
			}
			engine.Browser.Wait()

			printView(cmd.OutOrStdout(), engine.Browser.View(), engine.Browser.IsMember)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&section, "section", directory.SectionDirectory, "section: talent, individuals, directory or custom")
	flags.StringVarP(&search, "search", "q", "", "free-text search")
	flags.IntVar(&pages, "pages", 1, "number of pages to load")
	flags.BoolVar(&refresh, "refresh", false, "refetch the first page, bypassing the cache")
	filters.register(flags)

	return cmd
}

func printView(w io.Writer, v directory.View, isMember func(string) bool) {
	fmt.Fprint(w, v.Section.Title)
	if v.Search != "" {
		fmt.Fprintf(w, " matching %q", v.Search)
	}
	fmt.Fprintln(w)

	if v.Pending && v.Section.Kind == domain.SectionCustom {
		fmt.Fprintln(w, "  (roles not loaded yet, custom classification pending)")
	}

	for _, b := range v.Buckets {
		fmt.Fprintf(w, "\n== %s (%d) ==\n", b.Label, len(b.Entities))
		for _, e := range b.Entities {
			fmt.Fprintln(w, "  "+entityLine(e, isMember(e.ID)))
		}
	}

	fmt.Fprintln(w)
	more := "no"
	if v.HasMore {
		more = "yes"
	}
	fmt.Fprintf(w, "loaded %d, more: %s\n", v.Loaded, more)
	if v.Err != nil {
		fmt.Fprintf(w, "error: %v\n", v.Err)
	}
	if v.Notice != "" {
		fmt.Fprintf(w, "notice: %s\n", v.Notice)
	}
}

func entityLine(e domain.Entity, member bool) string {
	parts := []string{e.ID, e.Name}
	if e.PrimaryRole != "" {
		parts = append(parts, e.PrimaryRole)
	}
	if e.Location != "" {
		parts = append(parts, e.Location)
	}
	line := strings.Join(parts, " | ")
	if member {
		line += " [team]"
	}
	return line
}
