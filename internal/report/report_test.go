package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/sheet-stats/internal/source"
	"github.com/ryabkov82/sheet-stats/internal/stats"
)

func aggregateCSV(t *testing.T, file, data string) stats.Result {
	t.Helper()
	return stats.Aggregate(context.Background(), file, source.NewCSV(strings.NewReader(data), ','), stats.AggregateOptions{})
}

func sampleResults(t *testing.T) []stats.Result {
	return []stats.Result{
		aggregateCSV(t, "a.csv", "A,B\n1,x\n2,5\n3,5\n,5\n"),
		stats.Failed("missing.xlsx", errors.New("файл не найден")),
		aggregateCSV(t, "zeros.csv", "Z,E\n0,\n0,\n"),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Records(sampleResults(t))))

	want := strings.Join([]string{
		"file,field,n,blank,bad,min,max,mean,std,sum,sumsq,variance,coefvar,status",
		"a.csv,A,3,1,0,1,3,2,0.816496580927726,6,14,0.6666666666666666,0.408248290463863,ok",
		"a.csv,B,3,0,1,5,5,5,0,15,75,0,0,ok",
		"missing.xlsx,,,,,,,,,,,,,failed: файл не найден",
		"zeros.csv,Z,2,0,0,0,0,0,0,0,0,0,nan,ok",
		"zeros.csv,E,0,2,0,nan,nan,nan,nan,0,0,nan,nan,ok",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestReadCSV(t *testing.T) {
	var buf bytes.Buffer
	records := Records(sampleResults(t))
	require.NoError(t, WriteCSV(&buf, records))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestReadCSVLegacyHeader(t *testing.T) {
	in := "file,field,average,sum,sumsq,min,max,n,variance,std,coefvar,blank,bad\n" +
		"GB_Leg1.xlsx,SpCond,2.0,6.0,14.0,1.0,3.0,3,0.6666,0.8165,0.408,1,0\n" +
		"GB_Leg1.xlsx,Notes,nan,0.0,0.0,nan,nan,0,nan,nan,nan,0,4\n"

	records, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "SpCond", records[0].Field)
	assert.Equal(t, stats.Some(2), records[0].Mean)
	assert.Equal(t, int64(3), records[0].N)
	assert.Equal(t, stats.StatusOK, records[0].Status)
	assert.False(t, records[1].Mean.Valid())
	assert.Equal(t, int64(4), records[1].Bad)

	_, err = ReadCSV(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("file,field,n\nx,y,zz\n"))
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	files, err := Write(path, Records(sampleResults(t)), DefaultMaxRows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"stats"}, f.GetSheetList())
	rows, err := f.GetRows("stats")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"a.csv", "B", "3", "0", "1", "5", "5", "5", "0", "15", "75", "0", "0", "ok"}, rows[2])
	assert.Equal(t, "failed: файл не найден", rows[3][len(Columns)-1])
	assert.Equal(t, "", rows[4][12])
}

func TestWriteXLSXParts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.xlsx")
	stale := filepath.Join(dir, "stats_part9.xlsx")
	require.NoError(t, os.WriteFile(stale, nil, 0o644))

	files, err := WriteXLSX(path, Records(sampleResults(t)), 2)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "stats_part1.xlsx"),
		filepath.Join(dir, "stats_part2.xlsx"),
		filepath.Join(dir, "stats_part3.xlsx"),
	}, files)
	assert.NoFileExists(t, stale)

	counts := []int{3, 3, 2}
	for i, name := range files {
		f, err := excelize.OpenFile(name)
		require.NoError(t, err)
		rows, err := f.GetRows("stats")
		require.NoError(t, err)
		assert.Len(t, rows, counts[i], name)
		assert.Equal(t, Columns, rows[0])
		require.NoError(t, f.Close())
	}
}

func TestWriteStdoutAndCSVFile(t *testing.T) {
	var buf bytes.Buffer
	files, err := Write("-", Records(sampleResults(t)), 0, &buf)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.True(t, strings.HasPrefix(buf.String(), "file,field,"))

	path := filepath.Join(t.TempDir(), "out.csv")
	files, err = Write(path, Records(sampleResults(t)), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}

func TestWriteXLSXReleasesWorkbookOnError(t *testing.T) {
	w := &XLSXWriter{OutputPath: filepath.Join(t.TempDir(), "missing", "stats.xlsx")}
	files, err := w.Write(Records(sampleResults(t)))
	require.Error(t, err)
	assert.Empty(t, files)
	assert.Nil(t, w.outFile)
}
