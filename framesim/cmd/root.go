// Package cmd provides the command-line interface of framesim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "framesim",
		Short: "framesim runs a frame scheduler against a simulated renderer.",
		Long: `framesim runs a frame scheduler against a simulated renderer. ` +
			`Every flag can also be set with a FRAMESIM_ environment variable, ` +
			`for example FRAMESIM_MAIN_LATENCY=6ms, or in a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnv(cmd)
		},
	}

	rootCmd.PersistentFlags().String("env-file", "",
		"file to read FRAMESIM_ variables from, overriding the environment")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately. The recorders are flushed before the program exits.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
