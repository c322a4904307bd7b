package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// set at build time with -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "jobsystem %s (%s) %s/%s\n", version, commit, runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
