// Package template provides preset builders: fully populated configurations
// for a named deployment archetype, built on the public nll.Config API.
package template

import (
	"context"
	"log/slog"

	"github.com/volcanoseis/nllgo/internal/nll"
)

// Volcano returns a configuration tuned for monitoring a single volcanic
// edifice: SDC transform, a tight high-resolution grid whose top sits above
// sea level, a stratovolcano velocity model and strict phase-count
// thresholds. The override map is applied by field name after the defaults;
// unknown keys warn and are ignored.
func Volcano(latOrig, lonOrig float64, overrides map[string]any, logger *slog.Logger) (*nll.Config, error) {
	cfg := nll.NewConfig()
	cfg.SetLogger(logger)

	cfg.Trans.Kind = nll.TransSDC
	cfg.Trans.LatOrig = &latOrig
	cfg.Trans.LonOrig = &lonOrig
	cfg.Trans.Rotation = 0.0

	cfg.Search = nll.SearchParams{
		Strategy:    nll.SearchOctree,
		NumCellsX:   20,
		NumCellsY:   20,
		NumCellsZ:   11,
		MinNodeSize: 0.01,
		MaxNodes:    20000,
		NumScatter:  5000,
	}

	cfg.Method.Method = "EDT_OT_WT"
	cfg.Method.MaxDistStaGrid = 50.0
	cfg.Method.MinPhases = 6
	cfg.Method.MinSPhases = 3
	cfg.Method.VpVsRatio = 1.73

	cfg.VelGrid = nll.NewVelocityGrid(200, 200, 50,
		nll.WithOrigin(-100.0, -100.0), nll.WithOriginZ(-5.0))
	cfg.LocGrid = nll.NewLocationGrid(100, 100, 30,
		nll.WithOrigin(-50.0, -50.0), nll.WithOriginZ(-5.0))

	cfg.Layers = nll.VolcanoEdificeLayers()

	cfg.PhaseAliases = []nll.PhaseAlias{
		{Class: "P", Labels: []string{"P", "p", "Pn", "Pg"}},
		{Class: "S", Labels: []string{"S", "s", "Sn", "Sg"}},
	}
	cfg.Quality = nll.QualityErrors{Values: []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5}}

	cfg.Signature = "USGS Volcano Disaster Assistance Program"
	cfg.Comment = "NonLinLoc template for volcano monitoring"

	return applyOverrides(cfg, overrides, logger)
}

// Regional returns a configuration tuned for wide-area earthquake location:
// LAMBERT transform, a broad coarse grid, a standard crustal model and
// relaxed phase-count thresholds.
func Regional(latOrig, lonOrig float64, overrides map[string]any, logger *slog.Logger) (*nll.Config, error) {
	cfg := nll.NewConfig()
	cfg.SetLogger(logger)

	cfg.Trans.Kind = nll.TransLambert
	cfg.Trans.LatOrig = &latOrig
	cfg.Trans.LonOrig = &lonOrig

	cfg.Search.MinNodeSize = 0.1
	cfg.Search.MaxNodes = 20000

	cfg.LocGrid = nll.NewLocationGrid(201, 201, 61,
		nll.WithOrigin(-100.0, -100.0))

	cfg.Layers = nll.RegionalCrustLayers()

	cfg.Method.MaxDistStaGrid = 300.0
	cfg.Method.MinPhases = 8
	cfg.Method.MinSPhases = 4

	cfg.Signature = "Regional Seismic Network"
	cfg.Comment = "Regional earthquake location"

	return applyOverrides(cfg, overrides, logger)
}

func applyOverrides(cfg *nll.Config, overrides map[string]any, logger *slog.Logger) (*nll.Config, error) {
	if len(overrides) == 0 {
		return cfg, nil
	}
	o, err := nll.DecodeOverrides(overrides, logger)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(context.Background(), o, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}
