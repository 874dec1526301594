// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import "github.com/spf13/cobra"

var logLevel string

// Root returns the root command for the opstrace CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opstrace",
		Short:         "Create opstrace observability instances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, error)")

	cmd.AddCommand(Create())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
