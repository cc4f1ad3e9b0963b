package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/crewdir/internal/app"
	"github.com/heartmarshall/crewdir/internal/domain"
)

func newRolesCmd(root *rootOptions) *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List the known roles per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := root.engine(cmd, app.Options{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range categories {
				category := domain.Category(c)
				if !category.IsValid() {
					return domain.NewValidationError("category", fmt.Sprintf("unknown category %q", c))
				}
				roles, err := engine.Roles.Roles(cmd.Context(), category)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%d)\n", category, len(roles))
				for _, r := range roles {
					fmt.Fprintf(out, "  %s\n", r.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category",
		[]string{domain.CategoryTalent.String(), domain.CategoryCrew.String()}, "categories to list")
	return cmd
}
