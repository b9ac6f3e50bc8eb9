package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rotv/coordinate-validator/internal/report"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Rank water features by distance to the nearest USGS site",
	Long: `Rank water features by distance to the nearest USGS monitoring site.

Sites are fetched once for the whole park area. Each water feature is graded
OK (under 300 m), CHECK (under 1000 m), FAR, MISSING COORDS or NO DATA. The
CSV goes to stdout (or --output); offenders are listed worst first on stderr.`,
	RunE: runWater,
}

var knownCmd = &cobra.Command{
	Use:   "known",
	Short: "List destinations that deviate from their known landmark coordinate",
	Long: `List destinations whose stored coordinate is more than the tolerance
away from the known landmark coordinate, farthest first, with the suggested
replacement.`,
	RunE: runKnown,
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List USGS monitoring sites in the park area",
	RunE:  runSites,
}

func runWater(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	dests, err := a.source.Destinations(ctx)
	if err != nil {
		return fmt.Errorf("load destinations: %w", err)
	}
	sites, err := a.areaSites(ctx)
	if err != nil {
		return fmt.Errorf("fetch hydrology sites: %w", err)
	}
	a.logger.Info("hydrology sites loaded", "sites", len(sites))

	rows := report.WaterFeatures(dests, a.rules.Features, sites)
	a.logger.Info("water features found", "count", len(rows))

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := report.WriteWaterCSV(w, rows); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if offenders := report.WaterOffenders(rows); len(offenders) > 0 {
		fmt.Fprint(os.Stderr, report.RenderWaterOffenders(offenders))
	}
	return nil
}

func runKnown(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	dests, err := a.source.Destinations(cmd.Context())
	if err != nil {
		return fmt.Errorf("load destinations: %w", err)
	}
	devs := report.KnownDeviations(dests, a.rules.Known, a.rules.Thresholds.KnownToleranceMeters)
	fmt.Fprint(cmd.OutOrStdout(), report.RenderKnownDeviations(devs))
	return nil
}

func runSites(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	sites, err := a.areaSites(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch hydrology sites: %w", err)
	}
	sorted := report.SortedSites(sites)
	fmt.Fprintf(cmd.OutOrStdout(), "Found %d USGS sites\n", len(sorted))
	fmt.Fprint(cmd.OutOrStdout(), report.RenderSites(sorted))
	return nil
}
