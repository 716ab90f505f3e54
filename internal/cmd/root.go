// Package cmd implements the CLI (Command Line Interface) of the application.
//
// ban - Ban a player by name, permanently or with a duration
// mute - Mute a player by name, permanently or with a duration
// unban - Revoke all live bans for a player
// unmute - Revoke all live mutes for a player
// report list - List the newest pending reports
// report accept - Accept pending reports by reporter/reported pair
// migrate - Initiate a database migration manually
// serve - The main application service entry point
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string //nolint:gochecknoglobals

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "mcbans",
	Short: "Punishment and report backend for game servers",
	Long:  ``,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	setupCLI()

	if errExecute := rootCmd.Execute(); errExecute != nil {
		os.Exit(1)
	}
}

func setupCLI() {
	if BuildVersion == "" {
		BuildVersion = "master"
	}

	rootCmd.Version = BuildVersion
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(banCmd())
	rootCmd.AddCommand(muteCmd())
	rootCmd.AddCommand(unbanCmd())
	rootCmd.AddCommand(unmuteCmd())

	rc := reportCmd()
	rc.AddCommand(reportListCmd())
	rc.AddCommand(reportAcceptCmd())
	rootCmd.AddCommand(rc)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/mcbans.yml)")
}
