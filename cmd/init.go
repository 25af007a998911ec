package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cal-pilot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize calpilot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure calpilot and generates a .calpilot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
