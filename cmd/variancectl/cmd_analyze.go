package main

import (
	"github.com/spf13/cobra"

	"eightball/variance/internal/business/variance"
)

type analyzeFlags struct {
	orgID   string
	actorID string
}

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	af := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run variance analysis and print JSON",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&af.orgID, "org", "", "Organization ID (required)")
	pf.StringVar(&af.actorID, "actor", "", "Actor ID recorded with stored results")
	_ = cmd.MarkPersistentFlagRequired("org")

	cmd.AddCommand(newAnalyzeUnitCmd(flags, af))
	cmd.AddCommand(&cobra.Command{
		Use:   "org",
		Short: "Analyze all active units of an organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(a *app) error {
				results, err := a.engine.AnalyzeOrganization(cmd.Context(), af.orgID, variance.WithActor(af.actorID))
				if err != nil {
					return err
				}
				if results == nil {
					results = []*variance.VarianceResult{}
				}
				return writeJSON(cmd.OutOrStdout(), results)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "brands",
		Short: "Aggregate variance by brand and product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(a *app) error {
				results, err := a.engine.AnalyzeBrandVariance(cmd.Context(), af.orgID, variance.WithActor(af.actorID))
				if err != nil {
					return err
				}
				if results == nil {
					results = []*variance.BrandVarianceResult{}
				}
				return writeJSON(cmd.OutOrStdout(), results)
			})
		},
	})
	return cmd
}

func newAnalyzeUnitCmd(flags *rootFlags, af *analyzeFlags) *cobra.Command {
	var unitID string

	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Analyze a single unit, prints null when no variance is detected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(a *app) error {
				result, err := a.engine.AnalyzeUnit(cmd.Context(), unitID, af.orgID, variance.WithActor(af.actorID))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&unitID, "unit", "", "Unit ID (required)")
	_ = cmd.MarkFlagRequired("unit")
	return cmd
}

func withApp(flags *rootFlags, fn func(a *app) error) error {
	a, err := openApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
