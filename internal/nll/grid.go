package nll

import "fmt"

// Grid type tags.
const (
	GridSlowLen       = "SLOW_LEN"
	GridSlowLenNoCorr = "SLOW_LEN_NOCORR"
	GridProbDensity   = "PROB_DENSITY"
	GridMisfit        = "MISFIT"
)

// GridSpec describes a 3-D regular lattice: the VGGRID velocity-sampling
// grid or the LOCGRID location search grid, selected by Keyword. FloatType
// is only emitted when set (LOCGRID carries SAVE/NO_SAVE, VGGRID does not).
//
// A GridSpec built as a plain struct literal carries whatever origin it was
// given, zero included. Origin centering happens only through the
// constructors below, and only for axes without an explicit origin option.
type GridSpec struct {
	Keyword   string
	Nx        int
	Ny        int
	Nz        int
	OrigX     float64
	OrigY     float64
	OrigZ     float64
	Dx        float64
	Dy        float64
	Dz        float64
	GridType  string
	FloatType string
}

type gridBuild struct {
	g          GridSpec
	explicitX  bool
	explicitY  bool
	uniformXY  *float64
	uniformXYZ *float64
}

// GridOption configures grid construction.
type GridOption func(*gridBuild)

// WithSpacing sets per-axis grid spacing in kilometers.
func WithSpacing(dx, dy, dz float64) GridOption {
	return func(b *gridBuild) {
		b.g.Dx, b.g.Dy, b.g.Dz = dx, dy, dz
	}
}

// WithSpacingXY sets a uniform horizontal spacing. It expands into Dx and Dy
// before origin derivation and wins over per-axis values.
func WithSpacingXY(d float64) GridOption {
	return func(b *gridBuild) { b.uniformXY = &d }
}

// WithSpacingXYZ sets a uniform spacing for all three axes. It wins over
// both per-axis values and WithSpacingXY.
func WithSpacingXYZ(d float64) GridOption {
	return func(b *gridBuild) { b.uniformXYZ = &d }
}

// WithOrigin pins the horizontal grid origin, suppressing centering for
// both axes.
func WithOrigin(x, y float64) GridOption {
	return func(b *gridBuild) {
		b.g.OrigX, b.g.OrigY = x, y
		b.explicitX, b.explicitY = true, true
	}
}

// WithOriginZ sets the top-of-grid depth. OrigZ is never derived; without
// this option it stays 0.
func WithOriginZ(z float64) GridOption {
	return func(b *gridBuild) { b.g.OrigZ = z }
}

// WithGridType overrides the grid type tag.
func WithGridType(t string) GridOption {
	return func(b *gridBuild) { b.g.GridType = t }
}

// NewVelocityGrid constructs a VGGRID spec with SLOW_LEN type and 1 km
// spacing defaults, centering unset horizontal origins.
func NewVelocityGrid(nx, ny, nz int, opts ...GridOption) GridSpec {
	return build(GridSpec{
		Keyword:  "VGGRID",
		Nx:       nx,
		Ny:       ny,
		Nz:       nz,
		Dx:       1.0,
		Dy:       1.0,
		Dz:       1.0,
		GridType: GridSlowLen,
	}, opts)
}

// NewLocationGrid constructs a LOCGRID spec with PROB_DENSITY type, SAVE
// float type and 1 km spacing defaults, centering unset horizontal origins.
func NewLocationGrid(nx, ny, nz int, opts ...GridOption) GridSpec {
	return build(GridSpec{
		Keyword:   "LOCGRID",
		Nx:        nx,
		Ny:        ny,
		Nz:        nz,
		Dx:        1.0,
		Dy:        1.0,
		Dz:        1.0,
		GridType:  GridProbDensity,
		FloatType: "SAVE",
	}, opts)
}

func build(g GridSpec, opts []GridOption) GridSpec {
	b := gridBuild{g: g}
	for _, opt := range opts {
		opt(&b)
	}
	// Uniform spacing shortcuts expand before the origin derivation runs.
	if b.uniformXYZ != nil {
		b.g.Dx, b.g.Dy, b.g.Dz = *b.uniformXYZ, *b.uniformXYZ, *b.uniformXYZ
	} else if b.uniformXY != nil {
		b.g.Dx, b.g.Dy = *b.uniformXY, *b.uniformXY
	}
	deriveOrigin(&b.g, b.explicitX, b.explicitY)
	return b.g
}

// deriveOrigin centers the grid on the transform origin for each horizontal
// axis without an explicit origin: orig = -(count * spacing) / 2. OrigZ is
// never touched. Every construction or mutation path that changes counts or
// spacing funnels through this one rule.
func deriveOrigin(g *GridSpec, explicitX, explicitY bool) {
	if !explicitX {
		g.OrigX = -(float64(g.Nx) * g.Dx) / 2.0
	}
	if !explicitY {
		g.OrigY = -(float64(g.Ny) * g.Dy) / 2.0
	}
}

// Render returns the grid statement line: integer counts, geometry at 3
// decimals, type tags last.
func (g GridSpec) Render() string {
	line := fmt.Sprintf("%s %d %d %d %.3f %.3f %.3f %.3f %.3f %.3f %s",
		g.Keyword, g.Nx, g.Ny, g.Nz,
		g.OrigX, g.OrigY, g.OrigZ,
		g.Dx, g.Dy, g.Dz, g.GridType)
	if g.FloatType != "" {
		line += " " + g.FloatType
	}
	return line
}
