package nll

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/volcanoseis/nllgo/internal/inventory"
)

// StationQuery describes a station search around a center point. RadiusDeg
// is in degrees of arc.
type StationQuery struct {
	Lat       float64
	Lon       float64
	RadiusDeg float64
	Networks  []string
	Stations  []string
	Channels  []string
	Start     string
	End       string
}

// StationProvider returns normalized station records for a query. The core
// performs no network I/O itself; implementations live outside this package.
type StationProvider interface {
	Stations(ctx context.Context, q StationQuery) ([]inventory.Station, error)
}

// Overrides is the closed, typed set of optional updates ApplyOverrides
// accepts. Zero values (nil pointers, empty strings) mean "leave unchanged".
type Overrides struct {
	Lat        *float64 `mapstructure:"lat"`
	Lon        *float64 `mapstructure:"lon"`
	GridKm     string   `mapstructure:"gridkm"`
	DepthKm    string   `mapstructure:"depthkm"`
	Signature  string   `mapstructure:"sig"`
	Comment    string   `mapstructure:"com"`
	Prefix     string   `mapstructure:"prefix"`
	Transform  string   `mapstructure:"trans"`
	Model      string   `mapstructure:"model"`
	Inventory  string   `mapstructure:"inventory"`
	LabelFmt   string   `mapstructure:"sta_fmt"`
	RadiusKm   float64  `mapstructure:"rad_km"`
	PError     float64  `mapstructure:"p_error"`
	SError     float64  `mapstructure:"s_error"`
	Phases     string   `mapstructure:"phases"`
	ErrorType  string   `mapstructure:"error_type"`
	ProbActive *float64 `mapstructure:"prob_active"`
}

// DecodeOverrides decodes a loosely-typed override map into the typed set.
// Unknown keys are reported as warnings and otherwise ignored.
func DecodeOverrides(m map[string]any, logger *slog.Logger) (Overrides, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o Overrides
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return o, err
	}
	if err := dec.Decode(m); err != nil {
		return o, fmt.Errorf("decoding overrides: %w", err)
	}
	for _, key := range md.Unused {
		logger.Warn("unknown override parameter", "key", key)
	}
	return o, nil
}

// ApplyOverrides applies the non-zero fields of o. The inventory source, if
// given, also regenerates station-phase error entries for every resulting
// station — a deliberate one-shot "from inventory" convenience. URL
// inventory sources need a StationProvider and a set transform origin.
func (c *Config) ApplyOverrides(ctx context.Context, o Overrides, provider StationProvider) error {
	if o.Lat != nil {
		c.Trans.LatOrig = o.Lat
	}
	if o.Lon != nil {
		c.Trans.LonOrig = o.Lon
	}

	if o.GridKm != "" {
		width, height, spacing, err := parseTriple(o.GridKm)
		if err != nil {
			return fmt.Errorf("gridkm: %w", err)
		}
		nx := int(width/spacing) + 1
		ny := int(height/spacing) + 1
		c.LocGrid = NewLocationGrid(nx, ny, c.LocGrid.Nz,
			WithSpacing(spacing, spacing, c.LocGrid.Dz),
			WithOriginZ(c.LocGrid.OrigZ))
		c.VelGrid = NewVelocityGrid(nx, ny, c.VelGrid.Nz,
			WithSpacing(spacing, spacing, c.VelGrid.Dz),
			WithOriginZ(c.VelGrid.OrigZ))
	}

	if o.DepthKm != "" {
		depthRange, spacing, err := parsePair(o.DepthKm)
		if err != nil {
			return fmt.Errorf("depthkm: %w", err)
		}
		nz := int(depthRange/spacing) + 1
		// The grid top starts 5 km above sea level so shallow sources and
		// station elevations stay inside the lattice.
		c.LocGrid = NewLocationGrid(c.LocGrid.Nx, c.LocGrid.Ny, nz,
			WithSpacing(c.LocGrid.Dx, c.LocGrid.Dy, spacing),
			WithOriginZ(-5.0))
		c.VelGrid = NewVelocityGrid(c.VelGrid.Nx, c.VelGrid.Ny, nz,
			WithSpacing(c.VelGrid.Dx, c.VelGrid.Dy, spacing),
			WithOriginZ(-5.0))
	}

	if o.Signature != "" {
		c.Signature = o.Signature
	}
	if o.Comment != "" {
		c.Comment = o.Comment
	}
	if o.Prefix != "" {
		c.OutputPath = "./loc/" + o.Prefix
	}
	if o.Transform != "" {
		c.Trans.Kind = o.Transform
	}
	if o.Model != "" {
		c.SetVelocityModel(o.Model)
	}

	if o.Inventory != "" {
		if err := c.applyInventory(ctx, o, provider); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyInventory(ctx context.Context, o Overrides, provider StationProvider) error {
	labelFmt := o.LabelFmt
	if labelFmt == "" {
		labelFmt = FmtSta
	}

	var stations []inventory.Station
	if strings.HasPrefix(o.Inventory, "http") {
		if provider == nil {
			return fmt.Errorf("station provider required for inventory URL %s", o.Inventory)
		}
		if c.Trans.LatOrig == nil || c.Trans.LonOrig == nil {
			return ErrMissingOrigin
		}
		radiusKm := o.RadiusKm
		if radiusKm == 0 {
			radiusKm = 50.0
		}
		var err error
		stations, err = provider.Stations(ctx, StationQuery{
			Lat:       *c.Trans.LatOrig,
			Lon:       *c.Trans.LonOrig,
			RadiusDeg: radiusKm / 111.0,
		})
		if err != nil {
			return fmt.Errorf("fetching stations: %w", err)
		}
	} else {
		var err error
		stations, err = inventory.ParseFile(o.Inventory, c.log())
		if err != nil {
			return err
		}
	}
	c.AddStationsFromRecords(stations, labelFmt)

	phases := o.Phases
	if phases == "" {
		phases = "PS"
	}
	errorType := o.ErrorType
	if errorType == "" {
		errorType = ErrorTypeGaussian
	}
	probActive := 1.0
	if o.ProbActive != nil {
		probActive = *o.ProbActive
	}
	for _, label := range c.StationLabels() {
		if strings.Contains(phases, "P") {
			c.AddPhaseError(label, "P", errorType, o.PError, errorType, o.PError, probActive)
		}
		if strings.Contains(phases, "S") {
			c.AddPhaseError(label, "S", errorType, o.SError, errorType, o.SError, probActive)
		}
	}
	return nil
}

func parseTriple(s string) (a, b, cc float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return 0, 0, 0, fmt.Errorf("expected three comma-separated values, got %q", s)
	}
	vals := make([]float64, 3)
	for i := 0; i < 3; i++ {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("value %d of %q: %w", i+1, s, err)
		}
	}
	return vals[0], vals[1], vals[2], nil
}

func parsePair(s string) (a, b float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("expected two comma-separated values, got %q", s)
	}
	vals := make([]float64, 2)
	for i := 0; i < 2; i++ {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("value %d of %q: %w", i+1, s, err)
		}
	}
	return vals[0], vals[1], nil
}
