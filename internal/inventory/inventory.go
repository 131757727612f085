// Package inventory parses station inventory text files and normalizes
// station records at the core's boundary. Two formats are handled: the FDSN
// station-service text format (NET|STA|LAT|LON|ELEV|SITENAME|START|END) and
// a simple space-separated CODE LAT LON ELEV format. StationXML and other
// structured inventories are out of scope.
package inventory

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Station is the normalized station record every inventory source reduces
// to. Elevation is in meters above sea level.
type Station struct {
	Network string
	Code    string
	Lat     float64
	Lon     float64
	Elev    float64
	Site    string
}

// DepthKm returns the station depth in kilometers, positive down.
func (s Station) DepthKm() float64 {
	return -s.Elev / 1000.0
}

// FormatLabel builds the station label for a GTSRCE/EQSTA line according to
// the label format mode. Modes with no network qualifier, or stations with
// no network code, fall back to the bare station code.
func FormatLabel(s Station, mode string) string {
	if s.Network == "" {
		return s.Code
	}
	switch mode {
	case "NET.STA":
		return s.Network + "." + s.Code
	case "NET_STA":
		return s.Network + "_" + s.Code
	case "NET.STA.LOC":
		return s.Network + "." + s.Code + "."
	case "NET_STA_LOC":
		return s.Network + "_" + s.Code + "_"
	default:
		return s.Code
	}
}

// ParseFile reads a station inventory, detecting the format from the file
// content: lines containing '|' select the FDSN text format, anything else
// the simple columnar format. A missing file is a fatal error; malformed
// lines inside the file are skipped with a diagnostic.
func ParseFile(path string, logger *slog.Logger) ([]Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	content := string(data)
	if looksLikeFDSN(content) {
		return ParseFDSNText(strings.NewReader(content), logger)
	}
	return ParseSimple(strings.NewReader(content), logger)
}

func looksLikeFDSN(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Contains(line, "|")
	}
	return false
}

// ParseFDSNText parses the FDSN station-service text format. Short or
// unparsable lines are skipped with a warning.
func ParseFDSNText(r io.Reader, logger *slog.Logger) ([]Station, error) {
	logger = orDefault(logger)
	var stations []Station
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 5 {
			logger.Warn("inventory line has insufficient columns, skipping", "line", lineNo)
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		elev, err3 := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			logger.Warn("inventory line has unparsable coordinates, skipping", "line", lineNo)
			continue
		}
		st := Station{
			Network: strings.TrimSpace(parts[0]),
			Code:    strings.TrimSpace(parts[1]),
			Lat:     lat,
			Lon:     lon,
			Elev:    elev,
		}
		if len(parts) > 5 {
			st.Site = strings.TrimSpace(parts[5])
		}
		stations = append(stations, st)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning inventory: %w", err)
	}
	return stations, nil
}

// ParseSimple parses the simple columnar format: CODE LAT LON ELEV per line.
func ParseSimple(r io.Reader, logger *slog.Logger) ([]Station, error) {
	logger = orDefault(logger)
	var stations []Station
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			logger.Warn("inventory line has insufficient columns, skipping", "line", lineNo)
			continue
		}
		lat, err1 := strconv.ParseFloat(parts[1], 64)
		lon, err2 := strconv.ParseFloat(parts[2], 64)
		elev, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			logger.Warn("inventory line has unparsable coordinates, skipping", "line", lineNo)
			continue
		}
		stations = append(stations, Station{
			Code: parts[0],
			Lat:  lat,
			Lon:  lon,
			Elev: elev,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning inventory: %w", err)
	}
	return stations, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
