package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/volcanoseis/nllgo/internal/nll"
)

// EQStaOptions holds options for the eqsta command.
type EQStaOptions struct {
	InventoryOptions
	PError     float64
	SError     float64
	Phases     string
	ErrorType  string
	ProbActive float64
}

// NewEQStaCommand creates the eqsta command.
func NewEQStaCommand() *cobra.Command {
	opts := &EQStaOptions{}

	cmd := &cobra.Command{
		Use:   "eqsta <inventory>",
		Short: "Print EQSTA statements from a station inventory",
		Long: `Print EQSTA timing-error statements for every station in an
inventory, one per requested phase.`,
		Example: `  # Gaussian 0.1 s P errors, 0.2 s S errors
  nllgo eqsta stations.txt --p-error 0.1 --s-error 0.2

  # P only, exponential error model
  nllgo eqsta stations.txt --phases P --error-type EXP`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEQSta(cmd, args[0], opts)
		},
	}

	addInventoryFlags(cmd, &opts.InventoryOptions)
	cmd.Flags().Float64Var(&opts.PError, "p-error", 0.0, "P phase timing error in seconds")
	cmd.Flags().Float64Var(&opts.SError, "s-error", 0.0, "S phase timing error in seconds")
	cmd.Flags().StringVar(&opts.Phases, "phases", "PS", "Phases to generate errors for (P|S|PS)")
	cmd.Flags().StringVar(&opts.ErrorType, "error-type", nll.ErrorTypeGaussian, "Error type (GAU|EXP)")
	cmd.Flags().Float64Var(&opts.ProbActive, "prob-active", 1.0, "Probability active")
	return cmd
}

func runEQSta(cmd *cobra.Command, source string, opts *EQStaOptions) error {
	stations, err := loadInventory(cmd, source, &opts.InventoryOptions)
	if err != nil {
		return err
	}

	c := nll.NewConfig()
	c.SetLogger(getLogger(cmd))
	c.AddStationsFromRecords(stations, opts.LabelFmt)

	for _, label := range c.StationLabels() {
		if strings.Contains(opts.Phases, "P") {
			c.AddPhaseError(label, "P", opts.ErrorType, opts.PError,
				opts.ErrorType, opts.PError, opts.ProbActive)
		}
		if strings.Contains(opts.Phases, "S") {
			c.AddPhaseError(label, "S", opts.ErrorType, opts.SError,
				opts.ErrorType, opts.SError, opts.ProbActive)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), c.PhaseErrorSection())
	return nil
}
