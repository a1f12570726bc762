package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/platewise/costoracle/internal/model"
)

// ParseTargetsXLSX reads targets from the first sheet of an XLSX workbook,
// expecting the same column layout as the CSV form.
func ParseTargetsXLSX(path string) ([]model.Target, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.New("ingest: sheet has no data rows")
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}

	return rowsToTargets(rows[0], rows[1:])
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
