package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/volcanoseis/nllgo/internal/inventory"
)

// StationsOptions holds options for the stations command.
type StationsOptions struct {
	InventoryOptions
	OutputFormat string
}

// NewStationsCommand creates the stations command.
func NewStationsCommand() *cobra.Command {
	opts := &StationsOptions{}

	cmd := &cobra.Command{
		Use:   "stations <inventory>",
		Short: "List stations from an inventory",
		Long: `List the stations parsed from an inventory file or FDSN station
service, with the label each one would carry in GTSRCE output.`,
		Example: `  # Tabulate a local inventory
  nllgo stations stations.txt

  # CSV of stations within 30 km of a point
  nllgo stations https://service.iris.edu --lat 46.2 --lon -122.18 \
    --rad-km 30 --output csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStations(cmd, args[0], opts)
		},
	}

	addInventoryFlags(cmd, &opts.InventoryOptions)
	cmd.Flags().StringVarP(&opts.OutputFormat, "output", "o", "table", "Output format (table|csv)")
	return cmd
}

func runStations(cmd *cobra.Command, source string, opts *StationsOptions) error {
	stations, err := loadInventory(cmd, source, &opts.InventoryOptions)
	if err != nil {
		return err
	}

	if opts.OutputFormat == "csv" {
		return stationsCSV(cmd.OutOrStdout(), stations, opts.LabelFmt)
	}
	return stationsTable(cmd.OutOrStdout(), stations, opts.LabelFmt)
}

func stationsTable(w io.Writer, stations []inventory.Station, labelFmt string) error {
	if len(stations) == 0 {
		_, _ = fmt.Fprintln(w, "(0 stations)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Label", "Network", "Station", "Latitude", "Longitude", "Elev (m)", "Site"})

	for _, s := range stations {
		t.AppendRow(table.Row{
			inventory.FormatLabel(s, labelFmt),
			s.Network,
			s.Code,
			fmt.Sprintf("%.6f", s.Lat),
			fmt.Sprintf("%.6f", s.Lon),
			fmt.Sprintf("%.1f", s.Elev),
			s.Site,
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d stations)\n", len(stations))
	return nil
}

func stationsCSV(w io.Writer, stations []inventory.Station, labelFmt string) error {
	_, _ = fmt.Fprintln(w, "label,network,station,latitude,longitude,elevation_m,site")
	for _, s := range stations {
		site := s.Site
		if strings.ContainsAny(site, ",\"\n") {
			site = `"` + strings.ReplaceAll(site, `"`, `""`) + `"`
		}
		_, _ = fmt.Fprintf(w, "%s,%s,%s,%.6f,%.6f,%.1f,%s\n",
			inventory.FormatLabel(s, labelFmt), s.Network, s.Code,
			s.Lat, s.Lon, s.Elev, site)
	}
	return nil
}
