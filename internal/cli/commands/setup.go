// Package commands implements the nllgo subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/volcanoseis/nllgo/internal/cli/config"
	"github.com/volcanoseis/nllgo/internal/fdsn"
	"github.com/volcanoseis/nllgo/internal/inventory"
	"github.com/volcanoseis/nllgo/internal/nll"
)

// Helper functions shared across commands

// getConfig returns the current configuration, falling back to defaults when
// no Load has run (direct command construction in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Output:     config.DefaultOutput,
		LabelFmt:   config.DefaultLabelFmt,
		Phases:     config.DefaultPhases,
		ErrorType:  config.DefaultErrorType,
		ProbActive: config.DefaultProbActive,
	}
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	return config.GetLogger(cmd.Context())
}

// InventoryOptions holds the station-source options shared by the gtsrce,
// eqsta and stations commands.
type InventoryOptions struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
	LabelFmt string
}

func addInventoryFlags(cmd *cobra.Command, opts *InventoryOptions) {
	cmd.Flags().Float64Var(&opts.Lat, "lat", 0, "Center latitude for FDSN search")
	cmd.Flags().Float64Var(&opts.Lon, "lon", 0, "Center longitude for FDSN search")
	cmd.Flags().Float64Var(&opts.RadiusKm, "rad-km", 0, "Search radius in km for FDSN")
	cmd.Flags().StringVar(&opts.LabelFmt, "sta-fmt", nll.FmtSta,
		"Station label format (STA|NET.STA|NET_STA)")
}

// loadInventory reads stations from a local inventory file, or from an FDSN
// station service when the source is a URL. FDSN sources require the center
// and radius flags; the radius converts to degrees at 111 km per degree.
func loadInventory(cmd *cobra.Command, source string, opts *InventoryOptions) ([]inventory.Station, error) {
	logger := getLogger(cmd)

	if strings.HasPrefix(source, "http") {
		flags := cmd.Flags()
		if !flags.Changed("lat") || !flags.Changed("lon") || !flags.Changed("rad-km") {
			return nil, fmt.Errorf("--lat, --lon and --rad-km are required for FDSN URLs")
		}
		client := fdsn.NewClient(source, fdsn.WithLogger(logger))
		stations, err := client.Stations(cmd.Context(), nll.StationQuery{
			Lat:       opts.Lat,
			Lon:       opts.Lon,
			RadiusDeg: opts.RadiusKm / 111.0,
		})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# Downloaded %d stations from %s\n", len(stations), source)
		return stations, nil
	}

	stations, err := inventory.ParseFile(source, logger)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# Loaded %d stations from %s\n", len(stations), source)
	return stations, nil
}
