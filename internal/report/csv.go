package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

// WriteCSV пишет заголовок и все строки таблицы.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Strings()); err != nil {
			return fmt.Errorf("ошибка записи строки: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// старые выгрузки называли среднее "average"
var columnAliases = map[string]string{
	"average": "mean",
}

// ReadCSV читает сводную таблицу обратно. Порядок колонок берётся из заголовка,
// колонки status может не быть.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		idx[name] = i
	}
	for _, required := range []string{"file", "field"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("в таблице нет колонки %q", required)
		}
	}

	var out []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("строка %d: %w", line, err)
		}
		rec, err := parseRecord(idx, row)
		if err != nil {
			return nil, fmt.Errorf("строка %d: %w", line, err)
		}
		out = append(out, rec)
	}
}

func parseRecord(idx map[string]int, row []string) (Record, error) {
	get := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{File: get("file"), Field: get("field")}
	rec.Status, rec.Reason = parseStatus(get("status"))
	if rec.Status == stats.StatusFailed {
		return rec, nil
	}

	var err error
	ints := []struct {
		name string
		dst  *int64
	}{{"n", &rec.N}, {"blank", &rec.Blank}, {"bad", &rec.Bad}}
	for _, f := range ints {
		if *f.dst, err = parseInt(get(f.name)); err != nil {
			return rec, fmt.Errorf("колонка %s: %w", f.name, err)
		}
	}

	values := []struct {
		name string
		dst  *stats.Value
	}{
		{"min", &rec.Min}, {"max", &rec.Max}, {"mean", &rec.Mean}, {"std", &rec.Std},
		{"variance", &rec.Variance}, {"coefvar", &rec.CoefVar},
	}
	for _, f := range values {
		if *f.dst, err = ParseValue(get(f.name)); err != nil {
			return rec, fmt.Errorf("колонка %s: %w", f.name, err)
		}
	}

	if v, err := ParseValue(get("sum")); err == nil {
		rec.Sum = v.Or(0)
	}
	if v, err := ParseValue(get("sumsq")); err == nil {
		rec.SumSq = v.Or(0)
	}
	return rec, nil
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	// numpy иногда пишет целые как 3.0
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseValue понимает пустую строку и "nan" как неопределённое значение.
func ParseValue(s string) (stats.Value, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return stats.None, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return stats.None, err
	}
	return stats.Some(f), nil
}

func parseStatus(s string) (stats.Status, string) {
	kind, reason, _ := strings.Cut(s, ":")
	reason = strings.TrimSpace(reason)
	switch strings.TrimSpace(kind) {
	case "failed":
		return stats.StatusFailed, reason
	case "aborted":
		return stats.StatusAborted, reason
	default:
		return stats.StatusOK, reason
	}
}
