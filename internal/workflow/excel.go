package workflow

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelContext is the current spreadsheet row visible to write_excel
// inside a group_excel iteration: a zero-based sequence of cell
// strings, with missing cells as the empty string.
type ExcelContext struct {
	Row   int // zero-based index within the loaded row set, for logging
	Cells []string
}

// Cell returns the 1-based write_from_col value, or "" with ok=false
// if the column is missing from this row.
func (e *ExcelContext) Cell(col int) (string, bool) {
	idx := col - 1
	if idx < 0 || idx >= len(e.Cells) {
		return "", false
	}
	return e.Cells[idx], true
}

// loadExcelRows reads the first sheet of path starting at startRow
// (1-based, inclusive), halting at the first fully-blank row. This
// halt is a requirement the original Python implementation's
// load_excel_rows does not have; it is added here per the contract
// that ends a data set at the first all-blank row.
func loadExcelRows(path string, startRow int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, wrapIOErr("open excel", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, newConfigErr("group_excel", "file")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, wrapIOErr("read excel rows", err)
	}

	if startRow < 1 {
		startRow = 2
	}
	var out [][]string
	for i := startRow - 1; i < len(rows); i++ {
		row := rows[i]
		if rowIsBlank(row) {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
