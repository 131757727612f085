// Package nll models NonLinLoc control documents: one typed record per
// statement kind, a Config aggregate that owns them, and the render/parse
// round trip. Records render to canonical whitespace-delimited lines; the
// aggregate assembles them into the full document the solver consumes.
package nll

import (
	"errors"
	"fmt"
	"strings"
)

// Coordinate transform kinds accepted by the TRANS statement.
const (
	TransSimple  = "SIMPLE"
	TransSDC     = "SDC"
	TransLambert = "LAMBERT"
	TransGlobal  = "GLOBAL"
)

// Search strategies for LOCSEARCH.
const (
	SearchOctree = "OCT"
	SearchGrid   = "GRID"
	SearchMet    = "MET"
)

// Timing-error distribution tags for EQSTA.
const (
	ErrorTypeGaussian    = "GAU"
	ErrorTypeExponential = "EXP"
)

// Station label format modes. Network-qualified modes widen the padded
// label field in GTSRCE and EQSTA lines; they never affect parsing.
const (
	FmtSta          = "STA"
	FmtNetSta       = "NET.STA"
	FmtNetStaUnder  = "NET_STA"
	FmtNetStaLoc    = "NET.STA.LOC"
	FmtNetStaLocUnd = "NET_STA_LOC"
)

// ErrMissingOrigin is returned when a transform is rendered before its
// origin latitude and longitude have been set.
var ErrMissingOrigin = errors.New("transform origin latitude and longitude must be set")

// labelWidth returns the padded field width for a station label format.
func labelWidth(mode string) int {
	switch mode {
	case FmtNetSta, FmtNetStaUnder:
		return 8
	default:
		return 5
	}
}

// ControlParams holds the CONTROL statement: solver verbosity and the seed
// for its random number generator.
type ControlParams struct {
	MessageFlag int
	RandomSeed  int
}

// DefaultControlParams returns the known-good CONTROL defaults.
func DefaultControlParams() ControlParams {
	return ControlParams{MessageFlag: 1, RandomSeed: 54321}
}

// Render returns the CONTROL statement line.
func (c ControlParams) Render() string {
	return fmt.Sprintf("CONTROL %d %d", c.MessageFlag, c.RandomSeed)
}

// Transform holds the TRANS statement mapping geographic coordinates to the
// solver's local Cartesian frame. LatOrig and LonOrig are nil until set;
// rendering without them fails.
type Transform struct {
	Kind     string
	LatOrig  *float64
	LonOrig  *float64
	Rotation float64
}

// DefaultTransform returns a SIMPLE transform with no origin.
func DefaultTransform() Transform {
	return Transform{Kind: TransSimple}
}

// Render returns the TRANS statement line. It returns ErrMissingOrigin when
// the origin coordinates are unset.
func (t Transform) Render() (string, error) {
	if t.LatOrig == nil || t.LonOrig == nil {
		return "", ErrMissingOrigin
	}
	return fmt.Sprintf("TRANS %s %.8f %.8f %.2f", t.Kind, *t.LatOrig, *t.LonOrig, t.Rotation), nil
}

// SearchParams holds the LOCSEARCH statement. The cell counts, node size and
// sample budgets apply only to the octree strategy; other strategies render
// as a bare tag.
type SearchParams struct {
	Strategy    string
	NumCellsX   int
	NumCellsY   int
	NumCellsZ   int
	MinNodeSize float64
	MaxNodes    int
	NumScatter  int
}

// DefaultSearchParams returns octree search defaults suitable for local
// networks.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Strategy:    SearchOctree,
		NumCellsX:   20,
		NumCellsY:   20,
		NumCellsZ:   11,
		MinNodeSize: 0.01,
		MaxNodes:    20000,
		NumScatter:  5000,
	}
}

// Render returns the LOCSEARCH statement line. The trailing "0 1" pair is
// the solver's useStationsDensity/stopOnMinNodeSize boilerplate.
func (s SearchParams) Render() string {
	if s.Strategy != SearchOctree {
		return "LOCSEARCH " + s.Strategy
	}
	return fmt.Sprintf("LOCSEARCH %s %d %d %d %g %d %d 0 1",
		s.Strategy, s.NumCellsX, s.NumCellsY, s.NumCellsZ,
		s.MinNodeSize, s.MaxNodes, s.NumScatter)
}

// MethodParams holds the LOCMETH statement: location method tag, station
// distance cutoff, phase-count thresholds and duplicate-arrival policy.
// Negative values mean "no limit" to the solver.
type MethodParams struct {
	Method         string
	MaxDistStaGrid float64
	MinPhases      int
	MaxPhases      int
	MinSPhases     int
	VpVsRatio      float64
	MaxGridMemory  int
	MinLocGrids    int
	DupMode        int
}

// DefaultMethodParams returns EDT_OT_WT method defaults.
func DefaultMethodParams() MethodParams {
	return MethodParams{
		Method:         "EDT_OT_WT",
		MaxDistStaGrid: 9999.0,
		MinPhases:      6,
		MaxPhases:      -1,
		MinSPhases:     -1,
		VpVsRatio:      -1,
		MaxGridMemory:  0,
		MinLocGrids:    -1,
		DupMode:        1,
	}
}

// Render returns the LOCMETH statement line.
func (m MethodParams) Render() string {
	return fmt.Sprintf("LOCMETH %s %.1f %d %d %d %g %d %d %d",
		m.Method, m.MaxDistStaGrid, m.MinPhases, m.MaxPhases,
		m.MinSPhases, m.VpVsRatio, m.MaxGridMemory, m.MinLocGrids, m.DupMode)
}

// Station holds one GTSRCE statement. Elevation is in kilometers, positive
// up; DepthCorr is the station delay correction in seconds.
type Station struct {
	Label     string
	Lat       float64
	Lon       float64
	Elev      float64
	DepthCorr float64
	LabelFmt  string
}

// Render returns the GTSRCE statement line: label, LATLON, coordinates at
// 6 decimals, depth correction at 1, elevation at 3.
func (s Station) Render() string {
	return fmt.Sprintf("GTSRCE %-*s LATLON %.6f %.6f %.1f %.3f",
		labelWidth(s.LabelFmt), s.Label, s.Lat, s.Lon, s.DepthCorr, s.Elev)
}

// PhaseError holds one EQSTA statement: the per-station, per-phase timing
// uncertainty model. The reported error may differ from the modeling error.
type PhaseError struct {
	Label       string
	Phase       string
	ErrorType   string
	Error       float64
	ReportType  string
	ReportError float64
	ProbActive  float64
	LabelFmt    string
}

// Render returns the EQSTA statement line.
func (e PhaseError) Render() string {
	return fmt.Sprintf("EQSTA  %-*s  %s  %s  %g  %s  %g  %g",
		labelWidth(e.LabelFmt), e.Label, e.Phase, e.ErrorType, e.Error,
		e.ReportType, e.ReportError, e.ProbActive)
}

// VelocityLayer holds one LAYER statement of a 1-D layered velocity model.
// Layers are expected in increasing depth order; the order is not validated.
type VelocityLayer struct {
	Depth   float64
	VpTop   float64
	VpGrad  float64
	VsTop   float64
	VsGrad  float64
	RhoTop  float64
	RhoGrad float64
}

// Render returns the LAYER statement line, all fields at 2 decimals.
func (l VelocityLayer) Render() string {
	return fmt.Sprintf("LAYER %5.2f %.2f %.2f %.2f %.2f %.2f %.2f",
		l.Depth, l.VpTop, l.VpGrad, l.VsTop, l.VsGrad, l.RhoTop, l.RhoGrad)
}

// PhaseAlias maps a phase class ("P" or "S") to the pick labels the solver
// should accept for it.
type PhaseAlias struct {
	Class  string
	Labels []string
}

// Render returns the LOCPHASEID statement line.
func (p PhaseAlias) Render() string {
	return fmt.Sprintf("LOCPHASEID %s   %s", p.Class, strings.Join(p.Labels, " "))
}

// QualityErrors holds the LOCQUAL2ERR statement: ordered timing-error
// magnitudes for the discrete pick quality codes 0..n.
type QualityErrors struct {
	Values []float64
}

// DefaultQualityErrors returns the standard quality-to-error table.
func DefaultQualityErrors() QualityErrors {
	return QualityErrors{Values: []float64{0.02, 0.05, 0.1, 0.2, 0.5, 99999.9}}
}

// Render returns the LOCQUAL2ERR statement line at 3 decimals.
func (q QualityErrors) Render() string {
	parts := make([]string, len(q.Values))
	for i, v := range q.Values {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return "LOCQUAL2ERR " + strings.Join(parts, " ")
}
