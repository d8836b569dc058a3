package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

// writeWorkbook сохраняет строки в первый лист новой книги. nil - пропущенная ячейка.
func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func readAll(t *testing.T, r stats.RowReader) [][]any {
	t.Helper()

	var out [][]any
	for r.Next() {
		row, err := r.Row()
		require.NoError(t, err)
		out = append(out, append([]any(nil), row...))
	}
	require.NoError(t, r.Err())
	return out
}

func TestOpenXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leg1.xlsx")
	writeWorkbook(t, path, [][]any{
		{"A", "B", "C"},
		{1, "x", true},
		{2.5, nil, false},
		{nil, 5},
	})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	require.Len(t, rows, 4)
	assert.Equal(t, []any{"A", "B", "C"}, rows[0])
	assert.Equal(t, []any{"1", "x", "1"}, rows[1])
	assert.Equal(t, []any{"2.5", nil, "0"}, rows[2])
	assert.Equal(t, []any{nil, "5"}, rows[3])
}

func TestXLSXScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.xlsx")
	writeWorkbook(t, path, [][]any{
		{"A", "B"},
		{1, "x"},
		{2, 5},
		{3, 5},
		{nil, 5},
	})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	res := stats.Aggregate(context.Background(), path, r, stats.AggregateOptions{})
	require.Equal(t, stats.StatusOK, res.Status, res.Reason())

	a, _ := res.Column("A")
	assert.Equal(t, int64(3), a.N)
	assert.Equal(t, int64(1), a.Blank)
	assert.Equal(t, stats.Some(2), a.Mean)
	assert.InDelta(t, 0.6667, a.Variance.NaN(), 1e-4)

	b, _ := res.Column("B")
	assert.Equal(t, int64(1), b.Bad)
	assert.Equal(t, stats.Some(0), b.CoefVar)
}

func TestOpenXLSXEmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	writeWorkbook(t, path, nil)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	res := stats.Aggregate(context.Background(), path, r, stats.AggregateOptions{})
	assert.Equal(t, stats.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, stats.ErrNoRows)
}

func TestOpenXLSXCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestCSV(t *testing.T) {
	in := "\xEF\xBB\xBFA,B\n1,x\n2,5\n3,5\n,5\n"
	r := NewCSV(strings.NewReader(in), ',')

	rows := readAll(t, r)
	require.Len(t, rows, 5)
	assert.Equal(t, []any{"A", "B"}, rows[0])
	assert.Equal(t, []any{"", "5"}, rows[4])
	assert.NoError(t, r.Close())
}

func TestCSVRaggedRows(t *testing.T) {
	r := NewCSV(strings.NewReader("a;b;c\n1\n1;2;3;4\n"), ';')

	rows := readAll(t, r)
	require.Len(t, rows, 3)
	assert.Len(t, rows[1], 1)
	assert.Len(t, rows[2], 4)
}

func TestOpenByExtension(t *testing.T) {
	dir := t.TempDir()

	tsv := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("x\ty\n1\t2\n"), 0o644))
	r, err := Open(tsv)
	require.NoError(t, err)
	rows := readAll(t, r)
	require.NoError(t, r.Close())
	assert.Equal(t, []any{"1", "2"}, rows[1])

	_, err = Open(filepath.Join(dir, "data.ods"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestXLSXDateCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.xlsx")
	day := time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Date", "Share", "Depth"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{day, 0.25, 4.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{day.AddDate(0, 0, 1), 0.5, 5}))
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B3", percent))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	require.Len(t, rows, 3)
	got, ok := rows[1][0].(time.Time)
	require.True(t, ok, "ячейка с датой: %#v", rows[1][0])
	assert.True(t, day.Equal(got))
	assert.Equal(t, []any{"0.25", "4.5"}, rows[1][1:])

	r2, err := Open(path)
	require.NoError(t, err)
	defer r2.Close()
	res := stats.Aggregate(context.Background(), path, r2, stats.AggregateOptions{})
	require.Equal(t, stats.StatusOK, res.Status)
	date, ok := res.Column("Date")
	require.True(t, ok)
	assert.Equal(t, int64(0), date.N)
	assert.Equal(t, int64(2), date.Bad)
	share, ok := res.Column("Share")
	require.True(t, ok)
	assert.Equal(t, int64(2), share.N)
	assert.Equal(t, stats.Some(0.25), share.Min)
}
