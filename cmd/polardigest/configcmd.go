package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the YAML configuration",
	}

	var outPath string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration (defaults, --config file and environment) as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(outPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", outPath)
			}
			if err := a.cfg.Save(outPath); err != nil {
				return err
			}
			a.logger.Info("config written", zap.String("path", outPath))
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	initCmd.Flags().StringVar(&outPath, "out", "", "Destination YAML file")
	initCmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	_ = initCmd.MarkFlagRequired("out")

	cmd.AddCommand(initCmd)
	return cmd
}
