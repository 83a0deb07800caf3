package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "audience-worker",
	Short: "Syncs warehouse customer identities into Facebook custom audiences",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(enqueueCmd)
}
