package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/paintmatch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective session configuration",
	Long: `Load the session file using the normal search order and print it as YAML.
Redirect the output to start a new session file.

Examples:
  paintmatch config > ~/.paintmatch/session.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
