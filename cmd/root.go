package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "teams",
		Short:         "Teams CLI: sign in, edit your profile and browse project teams",
		Long:          "teams talks to the Teams backend from the terminal. It keeps your session between runs, caches profiles and projects, and applies profile edits immediately while the backend confirms them.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp(os.Stderr)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		app.restoreSession(cmd.Context())
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		app.service.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newProfileCmd(app),
		newProjectCmd(app),
		newTeamCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
