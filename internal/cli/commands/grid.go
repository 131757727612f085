package commands

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/volcanoseis/nllgo/internal/nll"
)

// GridOptions holds options for the locgrid and vggrid commands.
type GridOptions struct {
	Nx, Ny, Nz    int
	Dx, Dy, Dz    float64
	Dxy, Dxyz     float64
	KmX, KmY, KmZ float64
	GridType      string
}

// NewLocGridCommand creates the locgrid command.
func NewLocGridCommand() *cobra.Command {
	opts := &GridOptions{}

	cmd := &cobra.Command{
		Use:   "locgrid",
		Short: "Print a LOCGRID statement",
		Long: `Print a single LOCGRID statement with a derived origin.

Counts come from --nx/--ny/--nz, or from physical extents via
--kmx/--kmy/--kmz divided by the spacing (rounded up). The horizontal
origin is placed so the grid is centered on the geographic origin.`,
		Example: `  # 100 km x 100 km grid at 1 km spacing
  nllgo locgrid --kmx 100 --kmy 100 --nz 50

  # Explicit counts, 0.5 km spacing everywhere
  nllgo locgrid --nx 201 --ny 201 --nz 61 --dxyz 0.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrid(cmd, opts, "LOCGRID")
		},
	}

	addGridFlags(cmd, opts)
	return cmd
}

// NewVGGridCommand creates the vggrid command.
func NewVGGridCommand() *cobra.Command {
	opts := &GridOptions{}

	cmd := &cobra.Command{
		Use:   "vggrid",
		Short: "Print a VGGRID statement",
		Long: `Print a single VGGRID statement with a derived origin.

Counts come from --nx/--ny/--nz, or from physical extents via
--kmx/--kmy/--kmz divided by the spacing (rounded up).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrid(cmd, opts, "VGGRID")
		},
	}

	addGridFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.GridType, "grid-type", nll.GridSlowLen,
		"Grid type (SLOW_LEN|SLOW_LEN_NOCORR)")
	return cmd
}

func addGridFlags(cmd *cobra.Command, opts *GridOptions) {
	cmd.Flags().IntVar(&opts.Nx, "nx", 0, "Number of grid points in X direction")
	cmd.Flags().IntVar(&opts.Ny, "ny", 0, "Number of grid points in Y direction")
	cmd.Flags().IntVar(&opts.Nz, "nz", 0, "Number of grid points in Z direction")
	cmd.Flags().Float64Var(&opts.Dx, "dx", 1.0, "Grid spacing in X direction (km)")
	cmd.Flags().Float64Var(&opts.Dy, "dy", 1.0, "Grid spacing in Y direction (km)")
	cmd.Flags().Float64Var(&opts.Dz, "dz", 1.0, "Grid spacing in Z direction (km)")
	cmd.Flags().Float64Var(&opts.Dxy, "dxy", 0, "Grid spacing for both X and Y directions (km)")
	cmd.Flags().Float64Var(&opts.Dxyz, "dxyz", 0, "Grid spacing for all three directions (km)")
	cmd.Flags().Float64Var(&opts.KmX, "kmx", 0, "Grid size in X direction (km)")
	cmd.Flags().Float64Var(&opts.KmY, "kmy", 0, "Grid size in Y direction (km)")
	cmd.Flags().Float64Var(&opts.KmZ, "kmz", 0, "Grid size in Z direction (km)")
}

func runGrid(cmd *cobra.Command, opts *GridOptions, keyword string) error {
	logger := getLogger(cmd)
	flags := cmd.Flags()
	out := cmd.OutOrStdout()

	dx, dy, dz := opts.Dx, opts.Dy, opts.Dz
	switch {
	case flags.Changed("dxyz"):
		if flags.Changed("dx") || flags.Changed("dy") || flags.Changed("dz") {
			logger.Warn("--dxyz overrides individual --dx, --dy and --dz values")
		}
		dx, dy, dz = opts.Dxyz, opts.Dxyz, opts.Dxyz
	case flags.Changed("dxy"):
		if flags.Changed("dx") || flags.Changed("dy") {
			logger.Warn("--dxy overrides individual --dx and --dy values")
		}
		dx, dy = opts.Dxy, opts.Dxy
	}

	nx, ny, nz := opts.Nx, opts.Ny, opts.Nz

	// Extent flags derive counts only when no explicit count was given; the
	// derived counts are echoed as comment lines above the statement.
	type axis struct {
		name     string
		countSet bool
		count    *int
		km       float64
		kmSet    bool
		d        float64
	}
	axes := []axis{
		{"x", flags.Changed("nx"), &nx, opts.KmX, flags.Changed("kmx"), dx},
		{"y", flags.Changed("ny"), &ny, opts.KmY, flags.Changed("kmy"), dy},
		{"z", flags.Changed("nz"), &nz, opts.KmZ, flags.Changed("kmz"), dz},
	}
	for _, a := range axes {
		if !a.kmSet {
			continue
		}
		if a.countSet {
			logger.Warn("both count and extent given for axis, using count",
				"axis", a.name)
			continue
		}
		*a.count = int(math.Ceil(a.km / a.d))
		fmt.Fprintf(out, "# n%s=%d calculated from km%s=%gkm / d%s=%gkm\n",
			a.name, *a.count, a.name, a.km, a.name, a.d)
	}

	var spec nll.GridSpec
	switch keyword {
	case "VGGRID":
		if nx == 0 {
			nx = 200
		}
		if ny == 0 {
			ny = 200
		}
		if nz == 0 {
			nz = 50
		}
		gridType := opts.GridType
		if gridType == "" {
			gridType = nll.GridSlowLen
		}
		spec = nll.NewVelocityGrid(nx, ny, nz,
			nll.WithSpacing(dx, dy, dz), nll.WithGridType(gridType))
		fmt.Fprintln(out, "# Velocity grid")
	default:
		if nx == 0 {
			nx = 100
		}
		if ny == 0 {
			ny = 100
		}
		if nz == 0 {
			nz = 50
		}
		spec = nll.NewLocationGrid(nx, ny, nz, nll.WithSpacing(dx, dy, dz))
		fmt.Fprintln(out, "# Location grid")
	}

	fmt.Fprintln(out, spec.Render())
	return nil
}
