package nll

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadReport summarizes one LoadDocument pass: how many statements were
// applied, how many recognized statements were malformed and skipped, and
// which keywords the loader does not handle (with occurrence counts) so
// lossy loads are inspectable instead of silent.
type LoadReport struct {
	Lines        int
	Applied      int
	Malformed    int
	Unrecognized map[string]int
}

// docLoader carries per-load state across handler calls.
type docLoader struct {
	cfg *Config
	// The first LAYER statement replaces the default model instead of
	// appending to it, so a rendered document loads back to the same layers.
	layersReplaced bool
}

// LoadDocument parses an existing control document into the Config. Blank
// lines and '#' comments are skipped; the first whitespace-delimited token
// selects a handler by case-insensitive keyword. Only TRANS, LOCGRID, LAYER,
// LOCSIG, LOCCOM, GTSRCE and EQSTA are recognized; everything else lands in
// the report's skip list. Malformed recognized lines are skipped with a
// diagnostic, never a hard failure.
func (c *Config) LoadDocument(text string) *LoadReport {
	report := &LoadReport{Unrecognized: make(map[string]int)}
	loader := &docLoader{cfg: c}

	handlers := map[string]func(*docLoader, []string) error{
		"TRANS":   (*docLoader).trans,
		"LOCGRID": (*docLoader).locGrid,
		"LAYER":   (*docLoader).layer,
		"LOCSIG":  (*docLoader).signature,
		"LOCCOM":  (*docLoader).comment,
		"GTSRCE":  (*docLoader).station,
		"EQSTA":   (*docLoader).phaseError,
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		keyword := strings.ToUpper(parts[0])
		handler, ok := handlers[keyword]
		if !ok {
			report.Unrecognized[keyword]++
			c.log().Debug("unrecognized statement", "keyword", keyword, "line", lineNo)
			continue
		}
		if err := handler(loader, parts); err != nil {
			report.Malformed++
			c.log().Warn("skipping malformed statement", "keyword", keyword, "line", lineNo, "error", err)
			continue
		}
		report.Applied++
	}
	report.Lines = lineNo
	return report
}

// LoadFile reads a control document from disk and parses it. A missing file
// is a fatal error.
func (c *Config) LoadFile(path string) (*LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading control file: %w", err)
	}
	return c.LoadDocument(string(data)), nil
}

func (l *docLoader) trans(parts []string) error {
	if len(parts) < 4 {
		return fmt.Errorf("need kind, latitude and longitude, got %d tokens", len(parts)-1)
	}
	lat, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	l.cfg.Trans.Kind = parts[1]
	l.cfg.Trans.LatOrig = &lat
	l.cfg.Trans.LonOrig = &lon
	if len(parts) > 4 {
		rot, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			return fmt.Errorf("rotation: %w", err)
		}
		l.cfg.Trans.Rotation = rot
	}
	return nil
}

func (l *docLoader) locGrid(parts []string) error {
	if len(parts) < 10 {
		return fmt.Errorf("need 9 geometry fields, got %d tokens", len(parts)-1)
	}
	var ints [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[1+i])
		if err != nil {
			return fmt.Errorf("point count: %w", err)
		}
		ints[i] = n
	}
	var floats [6]float64
	for i := 0; i < 6; i++ {
		f, err := strconv.ParseFloat(parts[4+i], 64)
		if err != nil {
			return fmt.Errorf("geometry field: %w", err)
		}
		floats[i] = f
	}
	g := &l.cfg.LocGrid
	g.Nx, g.Ny, g.Nz = ints[0], ints[1], ints[2]
	g.OrigX, g.OrigY, g.OrigZ = floats[0], floats[1], floats[2]
	g.Dx, g.Dy, g.Dz = floats[3], floats[4], floats[5]
	if len(parts) > 10 {
		g.GridType = parts[10]
	}
	if len(parts) > 11 {
		g.FloatType = parts[11]
	}
	return nil
}

func (l *docLoader) layer(parts []string) error {
	if len(parts) < 8 {
		return fmt.Errorf("need 7 layer fields, got %d tokens", len(parts)-1)
	}
	var vals [7]float64
	for i := 0; i < 7; i++ {
		f, err := strconv.ParseFloat(parts[1+i], 64)
		if err != nil {
			return fmt.Errorf("layer field: %w", err)
		}
		vals[i] = f
	}
	if !l.layersReplaced {
		l.cfg.Layers = nil
		l.layersReplaced = true
	}
	l.cfg.Layers = append(l.cfg.Layers, VelocityLayer{
		Depth: vals[0], VpTop: vals[1], VpGrad: vals[2],
		VsTop: vals[3], VsGrad: vals[4], RhoTop: vals[5], RhoGrad: vals[6],
	})
	return nil
}

func (l *docLoader) signature(parts []string) error {
	if len(parts) < 2 {
		return fmt.Errorf("empty signature")
	}
	l.cfg.Signature = strings.Join(parts[1:], " ")
	return nil
}

func (l *docLoader) comment(parts []string) error {
	if len(parts) < 2 {
		return fmt.Errorf("empty comment")
	}
	l.cfg.Comment = strings.Join(parts[1:], " ")
	return nil
}

// station appends the Station only: the EQSTA lines of the same document
// carry the error entries, so the AddStation default-entry side effect would
// duplicate them on a round trip.
func (l *docLoader) station(parts []string) error {
	if len(parts) < 7 {
		return fmt.Errorf("need label, LATLON and 4 numeric fields, got %d tokens", len(parts)-1)
	}
	if strings.ToUpper(parts[2]) != "LATLON" {
		return fmt.Errorf("unsupported source coordinate mode %q", parts[2])
	}
	lat, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	depthCorr, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return fmt.Errorf("depth correction: %w", err)
	}
	elev, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return fmt.Errorf("elevation: %w", err)
	}
	l.cfg.Stations = append(l.cfg.Stations, Station{
		Label:     parts[1],
		Lat:       lat,
		Lon:       lon,
		Elev:      elev,
		DepthCorr: depthCorr,
		LabelFmt:  FmtSta,
	})
	return nil
}

func (l *docLoader) phaseError(parts []string) error {
	if len(parts) < 8 {
		return fmt.Errorf("need 7 fields, got %d tokens", len(parts)-1)
	}
	errVal, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}
	reportErr, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return fmt.Errorf("reported error: %w", err)
	}
	probActive, err := strconv.ParseFloat(parts[7], 64)
	if err != nil {
		return fmt.Errorf("probability active: %w", err)
	}
	l.cfg.PhaseErrors = append(l.cfg.PhaseErrors, PhaseError{
		Label:       parts[1],
		Phase:       parts[2],
		ErrorType:   parts[3],
		Error:       errVal,
		ReportType:  parts[5],
		ReportError: reportErr,
		ProbActive:  probActive,
	})
	return nil
}
