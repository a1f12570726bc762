// Package ingest parses batch target lists from CSV and XLSX files.
package ingest

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/platewise/costoracle/internal/model"
)

// Required and optional column headers for target files. Matching is
// case-insensitive and whitespace-trimmed.
const (
	colIngredient = "ingredient"
	colLocation   = "location"
	colCode       = "location code"
	colStage      = "lifecycle stage"
	colYear       = "year"
)

// ParseTargetsCSV reads a CSV of estimation targets. Rows with an empty
// ingredient or location code are skipped; duplicate targets (by cache key)
// are dropped.
func ParseTargetsCSV(path string) ([]model.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}
	if len(records) < 2 {
		return nil, eris.New("ingest: csv has no data rows")
	}

	return rowsToTargets(records[0], records[1:])
}

// rowsToTargets converts a header row plus data rows into targets.
func rowsToTargets(header []string, rows [][]string) ([]model.Target, error) {
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{colIngredient, colCode} {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("ingest: missing required column %q", col)
		}
	}

	seen := make(map[string]bool)
	var targets []model.Target

	for _, row := range rows {
		t := model.Target{
			IngredientName: getCol(row, colIdx, colIngredient),
			LocationName:   getCol(row, colIdx, colLocation),
			LocationCode:   getCol(row, colIdx, colCode),
			LifecycleStage: getCol(row, colIdx, colStage),
		}
		if rawYear := getCol(row, colIdx, colYear); rawYear != "" {
			year, err := strconv.Atoi(rawYear)
			if err != nil {
				return nil, eris.Wrapf(err, "ingest: bad year %q", rawYear)
			}
			t.Year = year
		}

		if t.IngredientName == "" || t.LocationCode == "" {
			continue
		}
		if seen[t.Key()] {
			continue
		}
		seen[t.Key()] = true
		targets = append(targets, t)
	}

	return targets, nil
}

func getCol(row []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
