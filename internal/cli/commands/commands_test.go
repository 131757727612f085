package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a command with args and returns its combined output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeInventory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.txt")
	body := "UW|VT01|46.20|-122.18|1500.0|Summit\nUW|VT02|46.25|-122.20|1200.0|Flank\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("0.1.0"))
	require.NoError(t, err)
	assert.Contains(t, out, "nllgo v0.1.0")
}

func TestLocGridCommand_Defaults(t *testing.T) {
	out, err := execute(t, NewLocGridCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "# Location grid\n")
	assert.Contains(t, out,
		"LOCGRID 100 100 50 -50.000 -50.000 0.000 1.000 1.000 1.000 PROB_DENSITY SAVE\n")
}

func TestLocGridCommand_ExtentDerivation(t *testing.T) {
	out, err := execute(t, NewLocGridCommand(), "--kmx", "100", "--kmy", "100", "--dxy", "0.5")
	require.NoError(t, err)

	assert.Contains(t, out, "# nx=200 calculated from kmx=100km / dx=0.5km")
	assert.Contains(t, out, "# ny=200 calculated from kmy=100km / dy=0.5km")
	assert.Contains(t, out,
		"LOCGRID 200 200 50 -50.000 -50.000 0.000 0.500 0.500 1.000 PROB_DENSITY SAVE\n")
}

func TestLocGridCommand_ExplicitCountWinsOverExtent(t *testing.T) {
	out, err := execute(t, NewLocGridCommand(), "--nx", "101", "--kmx", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "LOCGRID 101 100 50")
	assert.NotContains(t, out, "calculated from kmx")
}

func TestVGGridCommand(t *testing.T) {
	out, err := execute(t, NewVGGridCommand(), "--nx", "50", "--ny", "50", "--nz", "20",
		"--dxyz", "2", "--grid-type", "SLOW_LEN_NOCORR")
	require.NoError(t, err)
	assert.Contains(t, out, "# Velocity grid\n")
	assert.Contains(t, out,
		"VGGRID 50 50 20 -50.000 -50.000 0.000 2.000 2.000 2.000 SLOW_LEN_NOCORR\n")
}

func TestGTSrceCommand(t *testing.T) {
	out, err := execute(t, NewGTSrceCommand(), writeInventory(t), "--sta-fmt", "NET.STA")
	require.NoError(t, err)

	assert.Contains(t, out, "# Loaded 2 stations")
	assert.Contains(t, out, "# Station definitions")
	assert.Contains(t, out, "GTSRCE UW.VT01  LATLON 46.200000 -122.180000 0.0 1.500")
	assert.Contains(t, out, "GTSRCE UW.VT02  LATLON 46.250000 -122.200000 0.0 1.200")
}

func TestGTSrceCommand_FDSNRequiresCenter(t *testing.T) {
	_, err := execute(t, NewGTSrceCommand(), "https://service.iris.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--lat, --lon and --rad-km are required")
}

func TestEQStaCommand(t *testing.T) {
	out, err := execute(t, NewEQStaCommand(), writeInventory(t),
		"--p-error", "0.15", "--s-error", "0.25")
	require.NoError(t, err)

	assert.Contains(t, out, "# Station-specific error definitions")
	var eqsta []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "EQSTA") {
			eqsta = append(eqsta, line)
		}
	}
	require.Len(t, eqsta, 4)
	assert.Contains(t, out, "EQSTA  VT01   P  GAU  0.15  GAU  0.15  1")
	assert.Contains(t, out, "EQSTA  VT01   S  GAU  0.25  GAU  0.25  1")
	assert.Contains(t, out, "EQSTA  VT02   P  GAU  0.15  GAU  0.15  1")
	assert.Contains(t, out, "EQSTA  VT02   S  GAU  0.25  GAU  0.25  1")
}

func TestEQStaCommand_SinglePhase(t *testing.T) {
	out, err := execute(t, NewEQStaCommand(), writeInventory(t), "--phases", "P")
	require.NoError(t, err)
	assert.Contains(t, out, "EQSTA  VT01   P")
	assert.NotContains(t, out, "EQSTA  VT01   S")
}

func TestStationsCommand_CSV(t *testing.T) {
	out, err := execute(t, NewStationsCommand(), writeInventory(t),
		"--output", "csv", "--sta-fmt", "NET_STA")
	require.NoError(t, err)

	assert.Contains(t, out, "label,network,station,latitude,longitude,elevation_m,site")
	assert.Contains(t, out, "UW_VT01,UW,VT01,46.200000,-122.180000,1500.0,Summit")
	assert.Contains(t, out, "UW_VT02,UW,VT02,46.250000,-122.200000,1200.0,Flank")
}

func TestStationsCommand_Table(t *testing.T) {
	out, err := execute(t, NewStationsCommand(), writeInventory(t))
	require.NoError(t, err)
	assert.Contains(t, out, "VT01")
	assert.Contains(t, out, "(2 stations)")
}

func TestControlCommand_VolcanoTemplateToStdout(t *testing.T) {
	out, err := execute(t, NewControlCommand(),
		"--template", "volcano", "--lat", "46.2", "--lon", "-122.18", "-o", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "CONTROL 1 54321")
	assert.Contains(t, out, "TRANS SDC 46.20000000 -122.18000000 0.00")
	assert.Contains(t, out, "LOCSIG USGS Volcano Disaster Assistance Program")
	assert.Contains(t, out, "LOCGRID 100 100 30 -50.000 -50.000 -5.000")
}

func TestControlCommand_TemplateRequiresOrigin(t *testing.T) {
	_, err := execute(t, NewControlCommand(), "--template", "volcano")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--lat and --lon are required")
}

func TestControlCommand_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.in")
	out, err := execute(t, NewControlCommand(),
		"--template", "regional", "--lat", "-38.5", "--lon", "176.0", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Control file written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TRANS LAMBERT -38.50000000 176.00000000 0.00")
	assert.Contains(t, string(data), "LOCMETH EDT_OT_WT 300.0 8 -1 4")
}

func TestControlCommand_SeisComPProfile(t *testing.T) {
	out, err := execute(t, NewControlCommand(),
		"--template", "volcano", "--lat", "46.2", "--lon", "-122.18",
		"--seiscomp", "-o", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "LOCGAU 0.001 0.0")
	assert.NotContains(t, out, "VGGRID")
}

func TestControlCommand_LoadExistingFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "template.in")
	body := "TRANS SDC 46.51 8.48\nLOCSIG Observatory Network\n"
	require.NoError(t, os.WriteFile(src, []byte(body), 0o644))

	out, err := execute(t, NewControlCommand(), "--template", src, "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "TRANS SDC 46.51000000 8.48000000 0.00")
	assert.Contains(t, out, "LOCSIG Observatory Network")
}

func TestControlCommand_MissingTemplateFile(t *testing.T) {
	_, err := execute(t, NewControlCommand(),
		"--template", filepath.Join(t.TempDir(), "absent.in"), "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading template")
}

func TestControlCommand_InventoryAndOverrides(t *testing.T) {
	out, err := execute(t, NewControlCommand(),
		"--template", "volcano", "--lat", "46.2", "--lon", "-122.18",
		"--inventory", writeInventory(t), "--sta-fmt", "NET_STA",
		"--p-error", "0.15", "--s-error", "0.25",
		"--gridkm", "60,60,0.5", "--prefix", "sthelens", "-o", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "GTSRCE UW_VT01  LATLON")
	assert.Contains(t, out, "EQSTA  UW_VT01  P  GAU  0.15")
	assert.Contains(t, out, "EQSTA  UW_VT02  S  GAU  0.25")
	assert.Contains(t, out, "LOCGRID 121 121 30")
	assert.Contains(t, out, "./loc/sthelens")
}

func TestControlCommand_DefaultsWithoutTemplate(t *testing.T) {
	out, err := execute(t, NewControlCommand(),
		"--lat", "46.51", "--lon", "8.48", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "TRANS SIMPLE 46.51000000 8.48000000 0.00")
	assert.Contains(t, out, "CONTROL 1 54321")
}
