package nll

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/volcanoseis/nllgo/internal/inventory"
)

// Config is the aggregate root for one control document. It owns exactly one
// of each singleton statement record plus the ordered station, phase-error
// and velocity-layer collections. A Config has no finalized state: it may be
// mutated and rendered any number of times, and a render always reflects the
// state at call time.
//
// Config is not safe for unsynchronized concurrent use.
type Config struct {
	Control ControlParams
	Trans   Transform
	VelGrid GridSpec
	LocGrid GridSpec
	Search  SearchParams
	Method  MethodParams
	Quality QualityErrors

	Layers       []VelocityLayer
	Stations     []Station
	PhaseErrors  []PhaseError
	PhaseAliases []PhaseAlias

	Signature string
	Comment   string

	// VGTYPE phases and the EQVPVS velocity ratio.
	VelTypes []string
	VpVs     float64

	// Solver I/O path declarations.
	VelocityPath string
	TimePath     string
	SynthPath    string
	ObsGlob      string
	ObsFormat    string
	OutputPath   string
	HypOutputs   []string

	logger *slog.Logger
}

// NewConfig returns a Config with every singleton record populated with
// known-good solver defaults and all collections empty except the default
// stratovolcano velocity model.
func NewConfig() *Config {
	return &Config{
		Control: DefaultControlParams(),
		Trans:   DefaultTransform(),
		VelGrid: NewVelocityGrid(200, 200, 50),
		LocGrid: NewLocationGrid(100, 100, 50),
		Search:  DefaultSearchParams(),
		Method:  DefaultMethodParams(),
		Quality: DefaultQualityErrors(),
		Layers:  DefaultStratovolcanoLayers(),
		PhaseAliases: []PhaseAlias{
			{Class: "P", Labels: []string{"P", "p", "Pn", "Pg", "P1"}},
			{Class: "S", Labels: []string{"S", "s", "Sn", "Sg", "S1"}},
		},
		Signature:    "NLLGo - NonLinLoc control generator",
		Comment:      "Generated automatically",
		VelTypes:     []string{"P"},
		VpVs:         1.73,
		VelocityPath: "./model/layer",
		TimePath:     "./time/layer",
		SynthPath:    "./obs_synth/synth.obs",
		ObsGlob:      "./obs/*.obs",
		ObsFormat:    "NLLOC_OBS",
		OutputPath:   "./loc/volcano",
		HypOutputs:   []string{"SAVE_NLLOC_ALL", "SAVE_NLLOC_SUM", "SAVE_HYPO71_SUM"},
	}
}

// SetLogger attaches a diagnostic logger. Nil means slog.Default().
func (c *Config) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// AddStation appends one station and its default zero-error Gaussian P-phase
// entry. Stations are never deduplicated: calling this twice with the same
// code yields two entries.
func (c *Config) AddStation(code string, lat, lon, elev, depthCorr float64) {
	c.Stations = append(c.Stations, Station{
		Label:     code,
		Lat:       lat,
		Lon:       lon,
		Elev:      elev,
		DepthCorr: depthCorr,
		LabelFmt:  FmtSta,
	})
	c.PhaseErrors = append(c.PhaseErrors, PhaseError{
		Label:      code,
		Phase:      "P",
		ErrorType:  ErrorTypeGaussian,
		ReportType: ErrorTypeGaussian,
		ProbActive: 1.0,
		LabelFmt:   FmtSta,
	})
}

// AddPhaseError appends one station-phase timing-error entry. Duplicate
// (label, phase) pairs are appended, not merged.
func (c *Config) AddPhaseError(label, phase, errorType string, errVal float64, reportType string, reportErr, probActive float64) {
	c.PhaseErrors = append(c.PhaseErrors, PhaseError{
		Label:       label,
		Phase:       phase,
		ErrorType:   errorType,
		Error:       errVal,
		ReportType:  reportType,
		ReportError: reportErr,
		ProbActive:  probActive,
	})
}

// AddPhaseErrors appends entries from a station -> phase -> (error,
// reported error) mapping. Stations and phases are visited in sorted order
// so rendering stays deterministic.
func (c *Config) AddPhaseErrors(errors map[string]map[string][2]float64) {
	for _, station := range sortedKeys(errors) {
		phases := errors[station]
		for _, phase := range sortedKeys(phases) {
			pair := phases[phase]
			c.AddPhaseError(station, phase, ErrorTypeGaussian, pair[0], ErrorTypeGaussian, pair[1], 1.0)
		}
	}
}

// AddPhaseErrorsForPhase appends entries for a single phase applied
// uniformly across the given stations.
func (c *Config) AddPhaseErrorsForPhase(errors map[string][2]float64, phase string) {
	for _, station := range sortedKeys(errors) {
		pair := errors[station]
		c.AddPhaseError(station, phase, ErrorTypeGaussian, pair[0], ErrorTypeGaussian, pair[1], 1.0)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddStationsFromRecords appends stations from normalized inventory records.
// Record elevations are meters; station elevations are stored in kilometers
// (the negated station depth).
func (c *Config) AddStationsFromRecords(stations []inventory.Station, labelFmt string) {
	for _, s := range stations {
		c.Stations = append(c.Stations, Station{
			Label:    inventory.FormatLabel(s, labelFmt),
			Lat:      s.Lat,
			Lon:      s.Lon,
			Elev:     -s.DepthKm(),
			LabelFmt: labelFmt,
		})
	}
}

// StationLabels returns the labels of all stations in insertion order.
func (c *Config) StationLabels() []string {
	labels := make([]string, len(c.Stations))
	for i, s := range c.Stations {
		labels[i] = s.Label
	}
	return labels
}

// SetupGrid sizes the location grid from a square horizontal extent and a
// depth range, both in kilometers. Counts are extent/spacing + 1. The
// horizontal origin is re-derived so the grid stays centered on the
// transform origin, which is moved to centerLat/centerLon when given.
func (c *Config) SetupGrid(extentKm, spacingKm, depthRangeKm, depthSpacingKm float64, centerLat, centerLon *float64) {
	n := int(extentKm/spacingKm) + 1
	nz := int(depthRangeKm/depthSpacingKm) + 1
	c.LocGrid.Nx, c.LocGrid.Ny, c.LocGrid.Nz = n, n, nz
	c.LocGrid.Dx, c.LocGrid.Dy, c.LocGrid.Dz = spacingKm, spacingKm, depthSpacingKm
	deriveOrigin(&c.LocGrid, false, false)
	if centerLat != nil {
		c.Trans.LatOrig = centerLat
	}
	if centerLon != nil {
		c.Trans.LonOrig = centerLon
	}
}

// SetupGridFromExtents replaces the location grid from per-axis physical
// extents, computing counts as ceil(extent/spacing), and sizes the velocity
// grid consistently. The uniformXY/uniformXYZ shortcuts win over the
// per-axis spacings; supplying both per-axis values and a shortcut is
// resolved in the shortcut's favor with a non-fatal warning.
func (c *Config) SetupGridFromExtents(kmX, kmY, kmZ, dx, dy, dz float64, uniformXY, uniformXYZ *float64) {
	if uniformXYZ != nil {
		if dx != 1.0 || dy != 1.0 || dz != 1.0 {
			c.log().Warn("uniform xyz spacing overrides per-axis spacing values")
		}
		dx, dy, dz = *uniformXYZ, *uniformXYZ, *uniformXYZ
	} else if uniformXY != nil {
		if dx != 1.0 || dy != 1.0 {
			c.log().Warn("uniform xy spacing overrides per-axis spacing values")
		}
		dx, dy = *uniformXY, *uniformXY
	}
	nx := int(math.Ceil(kmX / dx))
	ny := int(math.Ceil(kmY / dy))
	nz := int(math.Ceil(kmZ / dz))
	c.LocGrid = NewLocationGrid(nx, ny, nz, WithSpacing(dx, dy, dz))
	c.VelGrid = NewVelocityGrid(nx, ny, nz, WithSpacing(dx, dy, dz))
}

// Section assembly. Each helper returns one blank-line separated section of
// the document in the fixed solver order.

func (c *Config) controlSection() string {
	return "# Basic control parameters\n" + c.Control.Render()
}

func (c *Config) transSection() (string, error) {
	line, err := c.Trans.Render()
	if err != nil {
		return "", err
	}
	return "# Transform command\n" + line, nil
}

func (c *Config) commentSection() string {
	return strings.Join([]string{
		"# Signature and comments",
		"LOCSIG " + c.Signature,
		"LOCCOM " + c.Comment,
	}, "\n")
}

func (c *Config) ioSection() string {
	return strings.Join([]string{
		fmt.Sprintf("VGOUT    %s", c.VelocityPath),
		fmt.Sprintf("GTFILES  %s  %s  P", c.VelocityPath, c.TimePath),
		fmt.Sprintf("EQFILES  %s  %s", c.TimePath, c.SynthPath),
		fmt.Sprintf("LOCFILES %s  %s  %s %s", c.ObsGlob, c.ObsFormat, c.TimePath, c.OutputPath),
		"LOCHYPOUT  " + strings.Join(c.HypOutputs, " "),
	}, "\n")
}

func (c *Config) velTypeSection() string {
	lines := make([]string, len(c.VelTypes))
	for i, t := range c.VelTypes {
		lines[i] = "VGTYPE  " + t
	}
	return strings.Join(lines, "\n")
}

func (c *Config) layerSection() string {
	lines := make([]string, 0, len(c.Layers)+1)
	lines = append(lines, "# Velocity model")
	for _, l := range c.Layers {
		lines = append(lines, l.Render())
	}
	return strings.Join(lines, "\n")
}

func (c *Config) phaseSection() string {
	lines := make([]string, 0, len(c.PhaseAliases)+2)
	lines = append(lines, "# Phase definitions")
	for _, a := range c.PhaseAliases {
		lines = append(lines, a.Render())
	}
	lines = append(lines, c.Quality.Render())
	return strings.Join(lines, "\n")
}

// StationSection renders the GTSRCE block on its own, for callers that only
// need the station definitions.
func (c *Config) StationSection() string {
	if len(c.Stations) == 0 {
		return "# No stations defined"
	}
	lines := make([]string, 0, len(c.Stations)+1)
	lines = append(lines, "# Station definitions")
	for _, s := range c.Stations {
		lines = append(lines, s.Render())
	}
	return strings.Join(lines, "\n")
}

// PhaseErrorSection renders the EQSTA block on its own.
func (c *Config) PhaseErrorSection() string {
	if len(c.PhaseErrors) == 0 {
		return "# No EQSTA error definitions"
	}
	lines := make([]string, 0, len(c.PhaseErrors)+1)
	lines = append(lines, "# Station-specific error definitions")
	for _, e := range c.PhaseErrors {
		lines = append(lines, e.Render())
	}
	return strings.Join(lines, "\n")
}

// Render assembles the complete control document: every section in the fixed
// solver order, separated by exactly one blank line. It fails only when a
// record precondition fails (an unset transform origin).
func (c *Config) Render() (string, error) {
	trans, err := c.transSection()
	if err != nil {
		return "", err
	}
	sections := []string{
		c.controlSection(),
		trans,
		c.commentSection(),

		c.ioSection(),

		"GTMODE   GRID3D  ANGLES_YES",
		"GT_PLFD  1.0e-3  0",

		"EQMECH  DOUBLE 0.0 90.0 0.0\nEQMODE SRCE_TO_STA\nEQEVENT  EQ001   0.0 0.0 10.0  0.0\nEQQUAL2ERR 0.1 0.2 0.4 0.8 99999.9",

		c.velTypeSection(),
		fmt.Sprintf("EQVPVS  %g", c.VpVs),

		"# Velocity grid\n" + c.VelGrid.Render(),
		"# Location grid\n" + c.LocGrid.Render(),

		c.Search.Render(),
		c.Method.Render(),

		c.layerSection(),

		"LOCGAU 0.2 0.0\nLOCGAU2 0.01 0.05 2.0\nLOCANGLES ANGLES_YES 5\nLOCMAG ML_HB 1.0 1.110 0.00189\nLOCPHSTAT 9999.0 -1 9999.0 1.0 1.0 9999.9 -9999.9 9999.9",

		c.phaseSection(),

		c.StationSection(),
		c.PhaseErrorSection(),
		"",
	}
	return strings.Join(sections, "\n\n"), nil
}

// RenderSeisComP assembles the reduced control document consumed by the
// SeisComP NonLinLoc plugin: no I/O path declarations, no mechanism or
// velocity-grid sections. It shares the same underlying records as Render.
func (c *Config) RenderSeisComP() (string, error) {
	trans, err := c.transSection()
	if err != nil {
		return "", err
	}
	sections := []string{
		c.controlSection(),
		trans,
		c.commentSection(),

		"GTMODE   GRID3D  ANGLES_YES",
		"GT_PLFD  1.0e-3  0",

		c.Search.Render(),
		"# Location grid\n" + c.LocGrid.Render(),
		c.Method.Render(),
		"LOCGAU 0.001 0.0",
		c.phaseSection(),
		"LOCQUAL2ERR 0.1 0.5 1.0 2.0 99999.9",
		"LOCANGLES ANGLES_YES 5",
	}
	return strings.Join(sections, "\n\n"), nil
}

// WriteControlFile renders the complete document and writes it in one shot.
// The write is not atomic; a crash mid-write can leave a partial document.
func (c *Config) WriteControlFile(path string) error {
	doc, err := c.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing control file: %w", err)
	}
	return nil
}

// WriteSeisComPFile renders the SeisComP profile and writes it in one shot.
func (c *Config) WriteSeisComPFile(path string) error {
	doc, err := c.RenderSeisComP()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing control file: %w", err)
	}
	return nil
}
