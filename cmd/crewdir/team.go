package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/crewdir/internal/app"
	"github.com/heartmarshall/crewdir/internal/domain"
)

var errGuest = fmt.Errorf("team commands need AUTH_ACCESS_TOKEN: %w", domain.ErrUnauthorized)

func newTeamCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Show or change your team",
	}
	cmd.AddCommand(newTeamListCmd(root), newTeamToggleCmd(root))
	return cmd
}

func newTeamListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your team members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := root.engine(cmd, app.Options{})
			if err != nil {
				return err
			}
			if engine.Team == nil {
				return errGuest
			}
			if err := engine.Team.Refresh(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			members := engine.Team.Members()
			fmt.Fprintf(out, "team of %s (%d)\n", engine.Team.Owner(), len(members))
			for _, m := range members {
				fmt.Fprintf(out, "  %s  added %s\n", m.EntityID, m.AddedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newTeamToggleCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <entity-id>",
		Short: "Add an entity to your team, or remove it if already there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := root.engine(cmd, app.Options{})
			if err != nil {
				return err
			}
			if engine.Team == nil {
				return errGuest
			}

			ctx := cmd.Context()
			if err := engine.Team.Refresh(ctx); err != nil {
				return err
			}

			entityID := args[0]
			outcome, err := engine.Browser.ToggleMembership(ctx, entityID)
			var mErr *domain.MutationError
			if errors.As(err, &mErr) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%v)\n", entityID, outcome, mErr.Err)
				return err
			}
			if err != nil {
				return err
			}

			state := "not on team"
			if engine.Browser.IsMember(entityID) {
				state = "on team"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %s\n", entityID, outcome, state)
			return nil
		},
	}
}
