package main

import (
	"github.com/spf13/cobra"

	"github.com/typeforge-lang/typeforge/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold typeforge's CLI configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a typeforge.yaml with default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteDefault(out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "typeforge.yaml", "path to write")
	return cmd
}
