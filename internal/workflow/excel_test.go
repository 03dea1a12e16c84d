package workflow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadExcelRowsHaltsAtBlankRow(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"header1", "header2"},
		{"alice", "1"},
		{"bob", "2"},
		{"", ""},
		{"carol", "3"}, // must never be reached
	})

	rows, err := loadExcelRows(path, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "alice", rows[0][0])
	require.Equal(t, "bob", rows[1][0])
}

func TestLoadExcelRowsDefaultStartRow(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"header1"},
		{"only row"},
	})

	rows, err := loadExcelRows(path, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "only row", rows[0][0])
}

func TestExcelContextCellOneBased(t *testing.T) {
	ctx := &ExcelContext{Row: 0, Cells: []string{"a", "b", "c"}}

	v, ok := ctx.Cell(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	v, ok = ctx.Cell(3)
	require.True(t, ok)
	require.Equal(t, "c", v)

	_, ok = ctx.Cell(4)
	require.False(t, ok, "out of range column reports missing")

	_, ok = ctx.Cell(0)
	require.False(t, ok, "zero column is invalid")
}

func TestRowIsBlank(t *testing.T) {
	require.True(t, rowIsBlank([]string{"", "  ", ""}))
	require.False(t, rowIsBlank([]string{"", "x"}))
}
