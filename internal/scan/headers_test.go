package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryabkov82/sheet-stats/internal/source"
)

func TestHeadersAndInventory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	paths := []string{
		write("a.csv", "Depth, SpCond ,Temp\n1,2,3\n"),
		write("b.csv", "depth,spcond\n"),
		write("empty.csv", ""),
		filepath.Join(dir, "missing.csv"),
		write("c.csv", "Temp,Depth\n"),
	}

	files := Headers(context.Background(), source.Open, paths, 2)
	require.Len(t, files, len(paths))

	assert.Equal(t, []string{"Depth", "SpCond", "Temp"}, files[0].Headers)
	assert.Equal(t, "в файле нет строк", files[2].Error)
	assert.NotEmpty(t, files[3].Error)
	assert.Empty(t, files[3].Headers)
	assert.Equal(t, paths[4], files[4].File)

	assert.Equal(t, []HeaderCount{
		{Name: "depth", Count: 3},
		{Name: "temp", Count: 2},
		{Name: "spcond", Count: 2},
	}, Inventory(files))
}

func TestHeadersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := Headers(ctx, source.Open, []string{"a.csv"}, 0)
	require.Len(t, files, 1)
	assert.NotEmpty(t, files[0].Error)
}

func TestInventoryNormalizesNames(t *testing.T) {
	files := []FileHeaders{
		{File: "a.xlsx", Headers: []string{"Ｄｅｐｔｈ", "Глубина"}},
		{File: "b.xlsx", Headers: []string{"depth ", "ГЛУБИНА"}},
	}
	assert.Equal(t, []HeaderCount{
		{Name: "глубина", Count: 2},
		{Name: "depth", Count: 2},
	}, Inventory(files))
}
