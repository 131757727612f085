package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/volcanoseis/nllgo/internal/fdsn"
	"github.com/volcanoseis/nllgo/internal/nll"
	"github.com/volcanoseis/nllgo/internal/template"
)

// ControlOptions holds options for the control command.
type ControlOptions struct {
	Output     string
	Template   string
	Inventory  string
	Lat        float64
	Lon        float64
	RadiusKm   float64
	GridKm     string
	DepthKm    string
	Signature  string
	Comment    string
	Prefix     string
	Transform  string
	Model      string
	LabelFmt   string
	PError     float64
	SError     float64
	Phases     string
	ErrorType  string
	ProbActive float64
	SeisComP   bool
}

// NewControlCommand creates the control command.
func NewControlCommand() *cobra.Command {
	opts := &ControlOptions{}

	cmd := &cobra.Command{
		Use:   "control",
		Short: "Generate a complete control file",
		Long: `Generate a complete NonLinLoc control file.

Starts from defaults, a predefined template (volcano, regional) or an
existing control file, applies the requested modifications, and writes
the document. Pass -o - to print to stdout instead.`,
		Example: `  # Volcano template centered on a summit, stations within 30 km
  nllgo control --template volcano --lat 46.2 --lon -122.18 \
    --inventory https://service.iris.edu --rad-km 30 -o volcano.in

  # Rebuild from an existing control file with a wider grid
  nllgo control --template ./old_control.in --gridkm 200,200,2

  # SeisComP plugin profile
  nllgo control --template volcano --lat 46.2 --lon -122.18 --seiscomp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runControl(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Output, "output", "o", "", "Output path, or - for stdout (default: nll_control.in)")
	f.StringVar(&opts.Template, "template", "", "Template file or predefined template (volcano, regional)")
	f.StringVar(&opts.Inventory, "inventory", "", "Station inventory file or FDSN URL")
	f.Float64Var(&opts.Lat, "lat", 0, "Origin latitude")
	f.Float64Var(&opts.Lon, "lon", 0, "Origin longitude")
	f.Float64Var(&opts.RadiusKm, "rad-km", 0, "Station search radius in km for FDSN")
	f.StringVar(&opts.GridKm, "gridkm", "", "Grid size in km (width,height,spacing)")
	f.StringVar(&opts.DepthKm, "depthkm", "", "Depth range in km (range,spacing)")
	f.StringVar(&opts.Signature, "sig", "", "LOCSIG signature")
	f.StringVar(&opts.Comment, "com", "", "LOCCOM comment")
	f.StringVar(&opts.Prefix, "prefix", "", "Output prefix for location files")
	f.StringVar(&opts.Transform, "trans", "", "Transform type (SIMPLE, SDC, LAMBERT, GLOBAL)")
	f.StringVar(&opts.Model, "model", "", "Velocity model name or YAML model file")
	f.StringVar(&opts.LabelFmt, "sta-fmt", "", "Station label format (STA|NET.STA|NET_STA)")
	f.Float64Var(&opts.PError, "p-error", 0, "P phase timing error in seconds")
	f.Float64Var(&opts.SError, "s-error", 0, "S phase timing error in seconds")
	f.StringVar(&opts.Phases, "phases", "", "Phases to generate errors for (P|S|PS)")
	f.StringVar(&opts.ErrorType, "error-type", "", "Error type (GAU|EXP)")
	f.Float64Var(&opts.ProbActive, "prob-active", 0, "EQSTA probability active")
	f.BoolVar(&opts.SeisComP, "seiscomp", false, "Write the reduced SeisComP plugin profile")

	return cmd
}

func runControl(cmd *cobra.Command, opts *ControlOptions) error {
	cfg := getConfig()
	logger := getLogger(cmd)
	flags := cmd.Flags()

	// Explicit flags beat file/env configuration.
	strOpt := func(name, flagVal, cfgVal string) string {
		if flags.Changed(name) {
			return flagVal
		}
		return cfgVal
	}
	f64Opt := func(name string, flagVal, cfgVal float64) float64 {
		if flags.Changed(name) {
			return flagVal
		}
		return cfgVal
	}

	var c *nll.Config
	tmpl := strOpt("template", opts.Template, cfg.Template)
	switch tmpl {
	case "volcano", "regional":
		if !flags.Changed("lat") || !flags.Changed("lon") {
			return fmt.Errorf("--lat and --lon are required for the %s template", tmpl)
		}
		var err error
		if tmpl == "volcano" {
			c, err = template.Volcano(opts.Lat, opts.Lon, nil, logger)
		} else {
			c, err = template.Regional(opts.Lat, opts.Lon, nil, logger)
		}
		if err != nil {
			return err
		}
	case "":
		c = nll.NewConfig()
		c.SetLogger(logger)
	default:
		c = nll.NewConfig()
		c.SetLogger(logger)
		report, err := c.LoadFile(tmpl)
		if err != nil {
			return fmt.Errorf("loading template %s: %w", tmpl, err)
		}
		logger.Debug("loaded template",
			"path", tmpl,
			"lines", report.Lines,
			"applied", report.Applied,
			"malformed", report.Malformed)
	}

	probActive := f64Opt("prob-active", opts.ProbActive, cfg.ProbActive)
	o := nll.Overrides{
		GridKm:     opts.GridKm,
		DepthKm:    opts.DepthKm,
		Signature:  strOpt("sig", opts.Signature, cfg.Signature),
		Comment:    strOpt("com", opts.Comment, cfg.Comment),
		Prefix:     strOpt("prefix", opts.Prefix, cfg.Prefix),
		Transform:  strOpt("trans", opts.Transform, cfg.Transform),
		Model:      strOpt("model", opts.Model, cfg.Model),
		Inventory:  strOpt("inventory", opts.Inventory, cfg.Inventory),
		LabelFmt:   strOpt("sta-fmt", opts.LabelFmt, cfg.LabelFmt),
		RadiusKm:   f64Opt("rad-km", opts.RadiusKm, cfg.RadiusKm),
		PError:     f64Opt("p-error", opts.PError, cfg.PError),
		SError:     f64Opt("s-error", opts.SError, cfg.SError),
		Phases:     strOpt("phases", opts.Phases, cfg.Phases),
		ErrorType:  strOpt("error-type", opts.ErrorType, cfg.ErrorType),
		ProbActive: &probActive,
	}
	if flags.Changed("lat") {
		o.Lat = &opts.Lat
	}
	if flags.Changed("lon") {
		o.Lon = &opts.Lon
	}

	var provider nll.StationProvider
	if strings.HasPrefix(o.Inventory, "http") {
		provider = fdsn.NewClient(o.Inventory, fdsn.WithLogger(logger))
	}

	if err := c.ApplyOverrides(cmd.Context(), o, provider); err != nil {
		return err
	}

	seiscomp := opts.SeisComP || cfg.SeisComP
	output := strOpt("output", opts.Output, cfg.Output)
	if output == "" {
		output = "nll_control.in"
	}

	if output == "-" {
		doc, err := renderControl(c, seiscomp)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), doc)
		return nil
	}

	var err error
	if seiscomp {
		err = c.WriteSeisComPFile(output)
	} else {
		err = c.WriteControlFile(output)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Control file written to %s\n", output)
	return nil
}

func renderControl(c *nll.Config, seiscomp bool) (string, error) {
	if seiscomp {
		return c.RenderSeisComP()
	}
	return c.Render()
}
