package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "calpilot",
	Short: "Conversational calendar assistant",
	Long: `Cal Pilot edits your calendar through natural language. It extracts
intent and dates from chat messages, finds the event you mean via
semantic search, and applies the edit: times, attendees, conferencing,
buffer events, reminders, recurrence and scheduling preferences.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".calpilot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
