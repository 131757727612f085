package nll

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcanoseis/nllgo/internal/testutil"
)

func TestConfig_LoadDocument_RoundTrip(t *testing.T) {
	orig := NewConfig()
	orig.SetLogger(testutil.NewTestLogger(t))
	orig.Trans.Kind = TransSDC
	orig.Trans.LatOrig = ptr(46.51)
	orig.Trans.LonOrig = ptr(8.48)
	orig.Signature = "Observatory Network"
	orig.Comment = "Round trip test"
	orig.LocGrid = NewLocationGrid(120, 120, 40, WithSpacingXYZ(0.5), WithOriginZ(-5.0))
	orig.Layers = []VelocityLayer{
		{Depth: 0, VpTop: 2.0, VsTop: 1.16, RhoTop: 2.7},
		{Depth: 8, VpTop: 5.5, VsTop: 3.18, RhoTop: 2.7},
	}
	orig.AddStation("VT01", 46.5103, 8.4758, -1.5, 0)
	orig.AddStation("VT02", 46.5201, 8.4811, -1.2, 0)

	doc, err := orig.Render()
	require.NoError(t, err)

	loaded := NewConfig()
	loaded.SetLogger(testutil.NewTestLogger(t))
	report := loaded.LoadDocument(doc)

	assert.Zero(t, report.Malformed)
	assert.Positive(t, report.Applied)

	assert.Equal(t, TransSDC, loaded.Trans.Kind)
	require.NotNil(t, loaded.Trans.LatOrig)
	assert.InDelta(t, 46.51, *loaded.Trans.LatOrig, 1e-6)
	assert.InDelta(t, 8.48, *loaded.Trans.LonOrig, 1e-6)
	assert.Equal(t, "Observatory Network", loaded.Signature)
	assert.Equal(t, "Round trip test", loaded.Comment)

	assert.Equal(t, orig.LocGrid, loaded.LocGrid)

	// The document's layers replace the default model instead of appending.
	require.Len(t, loaded.Layers, 2)
	assert.InDelta(t, 5.5, loaded.Layers[1].VpTop, 1e-6)

	require.Len(t, loaded.Stations, 2)
	assert.Equal(t, "VT01", loaded.Stations[0].Label)
	assert.InDelta(t, -1.5, loaded.Stations[0].Elev, 1e-6)
	// EQSTA lines carry the error entries; GTSRCE loading adds none of its
	// own, so a round trip does not duplicate them.
	require.Len(t, loaded.PhaseErrors, 2)
	assert.Equal(t, "VT01", loaded.PhaseErrors[0].Label)
}

func TestConfig_LoadDocument_SkipsCommentsAndBlanks(t *testing.T) {
	c := NewConfig()
	c.SetLogger(testutil.NewTestLogger(t))
	report := c.LoadDocument("# only a comment\n\n   \n# another\n")

	assert.Zero(t, report.Applied)
	assert.Zero(t, report.Malformed)
	assert.Empty(t, report.Unrecognized)
	assert.Equal(t, 4, report.Lines)
}

func TestConfig_LoadDocument_UnrecognizedCounted(t *testing.T) {
	c := NewConfig()
	c.SetLogger(testutil.NewTestLogger(t))
	doc := "CONTROL 1 54321\nLOCSEARCH OCT 20 20 11 0.01 20000 5000 0 1\nCONTROL 1 99\n"
	report := c.LoadDocument(doc)

	assert.Zero(t, report.Applied)
	assert.Equal(t, 2, report.Unrecognized["CONTROL"])
	assert.Equal(t, 1, report.Unrecognized["LOCSEARCH"])
	// The loader must not have touched the defaults.
	assert.Equal(t, 54321, c.Control.RandomSeed)
}

func TestConfig_LoadDocument_MalformedSkipped(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"trans too short", "TRANS SDC"},
		{"trans bad latitude", "TRANS SDC abc 8.48"},
		{"locgrid too short", "LOCGRID 101 101 51"},
		{"layer bad field", "LAYER 0.0 x 0.0 1.16 0.0 2.7 0.0"},
		{"gtsrce wrong mode", "GTSRCE VT01 XYZ 46.51 8.48 0.0 -1.5"},
		{"gtsrce too short", "GTSRCE VT01 LATLON 46.51"},
		{"eqsta too short", "EQSTA VT01 P GAU"},
		{"empty signature", "LOCSIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.SetLogger(testutil.NewTestLogger(t))
			report := c.LoadDocument(tt.line + "\n")

			assert.Equal(t, 1, report.Malformed)
			assert.Zero(t, report.Applied)
		})
	}
}

func TestConfig_LoadDocument_CaseInsensitiveKeywords(t *testing.T) {
	c := NewConfig()
	c.SetLogger(testutil.NewTestLogger(t))
	report := c.LoadDocument("trans SDC 46.51 8.48\ngtsrce VT01 latlon 46.51 8.48 0.0 -1.5\n")

	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, TransSDC, c.Trans.Kind)
	require.Len(t, c.Stations, 1)
}

func TestConfig_LoadDocument_LocGridFieldOrder(t *testing.T) {
	c := NewConfig()
	c.SetLogger(testutil.NewTestLogger(t))
	report := c.LoadDocument("LOCGRID 101 91 51 -50.5 -45.5 -5.0 1.0 0.5 0.25 MISFIT NO_SAVE\n")

	require.Equal(t, 1, report.Applied)
	g := c.LocGrid
	assert.Equal(t, [3]int{101, 91, 51}, [3]int{g.Nx, g.Ny, g.Nz})
	assert.Equal(t, [3]float64{-50.5, -45.5, -5.0}, [3]float64{g.OrigX, g.OrigY, g.OrigZ})
	assert.Equal(t, [3]float64{1.0, 0.5, 0.25}, [3]float64{g.Dx, g.Dy, g.Dz})
	assert.Equal(t, GridMisfit, g.GridType)
	assert.Equal(t, "NO_SAVE", g.FloatType)
}

func TestConfig_LoadDocument_TransRotation(t *testing.T) {
	c := NewConfig()
	c.SetLogger(testutil.NewTestLogger(t))
	report := c.LoadDocument("TRANS LAMBERT -38.5 176.0 12.5\n")

	require.Equal(t, 1, report.Applied)
	assert.Equal(t, TransLambert, c.Trans.Kind)
	assert.Equal(t, 12.5, c.Trans.Rotation)
}

func TestConfig_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.in")
	require.NoError(t, os.WriteFile(path, []byte("TRANS SDC 46.51 8.48\n"), 0o644))

	c := NewConfig()
	c.SetLogger(testutil.NewTestLogger(t))
	report, err := c.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
}

func TestConfig_LoadFile_Missing(t *testing.T) {
	c := NewConfig()
	_, err := c.LoadFile(filepath.Join(t.TempDir(), "absent.in"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
