package cmd

import (
	"context"
	"fmt"
	"strings"

	profileadapter "github.com/bnema/teams-cli/internal/adapters/render/profile"
	"github.com/bnema/teams-cli/internal/application"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit user profiles",
	}

	cmd.AddCommand(
		newProfileShowCmd(app),
		newProfileRenameCmd(app),
		newProfileAvatarCmd(app),
	)

	return cmd
}

func newProfileShowCmd(app *app) *cobra.Command {
	var userID string
	var refresh bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a profile (yours by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseOptionalID(userID)
			if err != nil {
				return err
			}

			var view application.ProfileView
			err = app.withProgress(cmd, "Loading profile...", asJSON, func(ctx context.Context) error {
				var err error
				if refresh {
					view, err = app.service.RefreshProfile(ctx, id)
				} else {
					view, err = app.service.Profile(ctx, id)
				}
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, view)
			}

			rendered, err := app.profileRenderer(view, profileadapter.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render profile: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID (defaults to the logged-in user)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ask the backend even if the profile is cached")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}

func newProfileRenameCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename NAME",
		Short: "Change your username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			err := app.withProgress(cmd, "Saving username...", false, func(ctx context.Context) error {
				return app.service.RenameSelf(ctx, name)
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Username changed to %s\n", name)
			return err
		},
	}
}

func newProfileAvatarCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar FILE",
		Short: "Upload a new profile image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No image selected, profile unchanged")
				return err
			}

			var imageURL string
			err := app.withProgress(cmd, "Uploading image...", false, func(ctx context.Context) error {
				var err error
				imageURL, err = app.service.ChangeAvatar(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Profile image updated: %s\n", imageURL)
			return err
		},
	}
}

// parseOptionalID treats an empty flag as "me".
func parseOptionalID(raw string) (domain.EntityID, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return domain.ParseEntityID(strings.TrimSpace(raw))
}
