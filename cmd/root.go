// Package cmd implements the vkblast command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "vkblast",
	Short: "Bulk message personalization and dispatch",
	Long: `vkblast imports a contact sheet, personalizes a message template
per contact and dispatches the messages sequentially through the
configured transport.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
