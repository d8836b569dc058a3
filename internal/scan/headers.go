// Package scan собирает заголовки таблиц, чтобы видеть, какие поля встречаются
// в наборе файлов и как часто.
package scan

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

// FileHeaders - заголовок одного файла или причина, по которой его не удалось прочитать.
type FileHeaders struct {
	File    string   `json:"file"`
	Headers []string `json:"headers,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type HeaderCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Headers читает только первую строку каждого файла. Порядок результата
// совпадает с порядком paths.
func Headers(ctx context.Context, open stats.Opener, paths []string, workers int) []FileHeaders {
	if workers <= 0 {
		workers = stats.DefaultWorkers()
	}
	out := make([]FileHeaders, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			out[i] = readHeaders(ctx, open, path)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func readHeaders(ctx context.Context, open stats.Opener, path string) FileHeaders {
	fh := FileHeaders{File: path}
	if err := ctx.Err(); err != nil {
		fh.Error = err.Error()
		return fh
	}

	rows, err := open(path)
	if err != nil {
		fh.Error = err.Error()
		return fh
	}
	defer rows.Close()

	headers, err := stats.ReadHeader(rows)
	switch {
	case errors.Is(err, stats.ErrNoRows):
		fh.Error = "в файле нет строк"
	case err != nil:
		fh.Error = err.Error()
	default:
		fh.Headers = headers
	}
	if fh.Error != "" {
		slog.Warn("заголовок не прочитан", slog.String("file", path), slog.String("reason", fh.Error))
	}
	return fh
}

// Inventory считает, сколько раз встречается каждое имя колонки. Имена
// сравниваются после NFKC, без учёта регистра и пробелов по краям.
// Сортировка по убыванию частоты, затем имени.
func Inventory(files []FileHeaders) []HeaderCount {
	count := make(map[string]int)
	for _, f := range files {
		for _, h := range f.Headers {
			count[headerKey(h)]++
		}
	}

	out := make([]HeaderCount, 0, len(count))
	for name, n := range count {
		out = append(out, HeaderCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name > out[j].Name
	})
	return out
}

func headerKey(h string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(h)))
}
