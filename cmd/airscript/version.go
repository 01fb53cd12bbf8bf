package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Airsequel/AirScript/pkg/prelude"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.0.0-dev"

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool and prelude versions",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(c.stdout, "airscript %s (%s)\n", version, prelude.Version)
		},
	}
}
