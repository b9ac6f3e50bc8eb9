// Command validate checks the park's destination coordinates against the
// park region, USGS hydrology sites, a known-landmark table, and reverse
// geocoding.
//
// Usage:
//
//	validate report --destinations-url http://localhost:8080/api/destinations > report.csv
//	validate water --destinations-file destinations.json
//	validate known
//	validate sites
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	destinationsURL  string
	destinationsFile string
	usgsMode         string
	logLevel         string
	outputPath       string
	noUSGS           bool
	noGeocode        bool
)

var rootCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate destination coordinates",
	Long: `Validate destination coordinates for the park.

Every destination is checked for presence, valid range, the park region,
distance to the nearest USGS monitoring site (water features), distance to
a known landmark coordinate, and the reverse-geocoded county.

Configuration is read from the environment (and a .env file when present);
flags override it.

Available commands:
  report - Validate every destination and write the CSV report
  water  - Water features ranked by distance to the nearest USGS site
  known  - Destinations that deviate from their known landmark coordinate
  sites  - USGS monitoring sites in the park area`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&destinationsURL, "destinations-url", "", "destination list URL (overrides DESTINATIONS_URL)")
	flags.StringVar(&destinationsFile, "destinations-file", "", "destination list JSON file (overrides DESTINATIONS_FILE)")
	flags.StringVar(&usgsMode, "usgs-mode", "", "hydrology lookup mode: window or snapshot (overrides USGS_MODE)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVarP(&outputPath, "output", "o", "", "write CSV output to a file instead of stdout")
	flags.BoolVar(&noUSGS, "no-usgs", false, "disable the hydrology cross-check")
	flags.BoolVar(&noGeocode, "no-geocode", false, "disable the reverse geocode cross-check")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(waterCmd)
	rootCmd.AddCommand(knownCmd)
	rootCmd.AddCommand(sitesCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
