package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "wirechat-admin",
	Short: "WireChat admin dashboard backend",
	Long: `wirechat-admin serves the WireChat administrative dashboard:
live presence tracking over websockets plus aggregate analytics and
activity logs over REST.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ./config.yaml)")
}
