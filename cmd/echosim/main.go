package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Harshitk-cp/echosim/internal/buildconfig"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "echosim",
		Short: "Epistemic bubble vs echo chamber belief simulation",
		Long: `echosim runs agent-based simulations of belief spread on a two-group
network, under either an open "bubble" policy or a trust-gated "chamber"
policy, and reports group belief statistics over time.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newDefaultsCmd(),
		newRunCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(buildconfig.VersionInfo())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "echosim version %s (commit: %s)\n", buildconfig.Version(), buildconfig.Commit())
			return nil
		},
	}
}
