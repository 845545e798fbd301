// Package cmd defines the command line interface of the service.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dkozyrev/softvault/pkg/configs"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "softvault",
		Short: "Internal software catalog: upload, dedup and browse binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose diagnostic output")

	rootCmd.AddCommand(versionCmd)

	registerServeCommands()
	registerMigrateCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("softvault " + configs.AppVersion)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
