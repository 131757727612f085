// Package config loads generator configuration for the nllgo CLI from file,
// environment and flags. This is configuration *of the generator* (default
// signature, error models, output paths), not the control document itself.
package config

import "github.com/volcanoseis/nllgo/internal/nll"

// Config holds all CLI configuration options.
type Config struct {
	Output     string  `koanf:"output"`
	Template   string  `koanf:"template"`
	Inventory  string  `koanf:"inventory"`
	LabelFmt   string  `koanf:"sta_fmt"`
	Signature  string  `koanf:"sig"`
	Comment    string  `koanf:"com"`
	Prefix     string  `koanf:"prefix"`
	Transform  string  `koanf:"trans"`
	Model      string  `koanf:"model"`
	RadiusKm   float64 `koanf:"rad_km"`
	PError     float64 `koanf:"p_error"`
	SError     float64 `koanf:"s_error"`
	Phases     string  `koanf:"phases"`
	ErrorType  string  `koanf:"error_type"`
	ProbActive float64 `koanf:"prob_active"`
	SeisComP   bool    `koanf:"seiscomp"`
	Verbose    bool    `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultOutput     = "nll_control.in"
	DefaultLabelFmt   = nll.FmtSta
	DefaultPhases     = "PS"
	DefaultErrorType  = nll.ErrorTypeGaussian
	DefaultProbActive = 1.0
)
