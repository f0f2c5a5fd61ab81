package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"eightball/variance/internal/business/variance"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update detection config",
	}
	cmd.AddCommand(newConfigDefaultCmd())
	cmd.AddCommand(newConfigShowCmd(flags))
	cmd.AddCommand(newConfigSetCmd(flags))
	return cmd
}

func newConfigDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print the default detection config as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeYAML(cmd.OutOrStdout(), variance.DefaultConfig())
		},
	}
}

func newConfigShowCmd(flags *rootFlags) *cobra.Command {
	var orgID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective detection config of an organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			return writeYAML(cmd.OutOrStdout(), a.engine.DetectionConfig(cmd.Context(), orgID))
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID (required)")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func newConfigSetCmd(flags *rootFlags) *cobra.Command {
	var (
		orgID string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a detection config for an organization from a YAML file",
		Long:  "Fields missing from the file keep their default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			cfg := variance.DefaultConfig()
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.SaveDetectionConfig(cmd.Context(), orgID, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "detection config saved for %s\n", orgID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&orgID, "org", "", "Organization ID (required)")
	f.StringVarP(&file, "file", "f", "", "YAML file (required)")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
