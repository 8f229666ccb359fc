package main

import (
	"encoding/json"

	"github.com/Harshitk-cp/echosim/internal/config"
	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/spf13/cobra"
)

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default simulation params as a params file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := domain.DefaultParams()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			data, err := config.EncodeParams(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
