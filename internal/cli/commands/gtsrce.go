package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volcanoseis/nllgo/internal/nll"
)

// NewGTSrceCommand creates the gtsrce command.
func NewGTSrceCommand() *cobra.Command {
	opts := &InventoryOptions{}

	cmd := &cobra.Command{
		Use:   "gtsrce <inventory>",
		Short: "Print GTSRCE statements from a station inventory",
		Long: `Print GTSRCE statements for every station in an inventory.

The inventory is a local file (FDSN text or whitespace columns) or an
FDSN station service URL; URLs need --lat, --lon and --rad-km.`,
		Example: `  # From a local inventory file
  nllgo gtsrce stations.txt

  # From an FDSN service, stations within 30 km of a volcano
  nllgo gtsrce https://service.iris.edu --lat 46.2 --lon -122.18 --rad-km 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGTSrce(cmd, args[0], opts)
		},
	}

	addInventoryFlags(cmd, opts)
	return cmd
}

func runGTSrce(cmd *cobra.Command, source string, opts *InventoryOptions) error {
	stations, err := loadInventory(cmd, source, opts)
	if err != nil {
		return err
	}

	c := nll.NewConfig()
	c.SetLogger(getLogger(cmd))
	c.AddStationsFromRecords(stations, opts.LabelFmt)

	fmt.Fprintln(cmd.OutOrStdout(), c.StationSection())
	return nil
}
