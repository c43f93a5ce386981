package cmd

import (
	"context"
	"fmt"

	profileadapter "github.com/bnema/teams-cli/internal/adapters/render/profile"
	"github.com/bnema/teams-cli/internal/application"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Browse projects",
	}

	cmd.AddCommand(newProjectShowCmd(app))

	return cmd
}

func newProjectShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a project and its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseEntityID(args[0])
			if err != nil {
				return err
			}

			var view application.ProjectView
			err = app.withProgress(cmd, "Loading project...", asJSON, func(ctx context.Context) error {
				var err error
				view, err = app.service.Project(ctx, id)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, view)
			}

			rendered, err := app.projectRenderer(view)
			if err != nil {
				return fmt.Errorf("render project: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}

func newTeamCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Browse project teams",
	}

	cmd.AddCommand(newTeamListCmd(app))

	return cmd
}

func newTeamListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list PROJECT_ID",
		Short: "List the owner and members of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseEntityID(args[0])
			if err != nil {
				return err
			}

			var view application.TeamView
			err = app.withProgress(cmd, "Loading team...", asJSON, func(ctx context.Context) error {
				var err error
				view, err = app.service.Team(ctx, id)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, view)
			}

			rendered, err := app.teamRenderer(view, profileadapter.RenderOptions{SelfID: app.selfID()})
			if err != nil {
				return fmt.Errorf("render team: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}
