// Package cli implements the videoinfo command line: the HTTP server and a
// few operator commands that share its wiring.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmusicplayer/videoinfo/internal/config"
)

// NewRootCmd builds the command tree. Running the root command without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "videoinfo",
		Short:         "List downloadable formats for YouTube and Facebook videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv(config.EnvPrefix+"_CONFIG", configPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./videoinfo.yaml)")

	root.AddCommand(
		newServeCmd(),
		newInspectCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
