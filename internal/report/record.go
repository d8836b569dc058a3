// Package report сериализует результаты обработки в сводную таблицу.
package report

import (
	"strconv"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

// Columns - порядок колонок сводной таблицы.
var Columns = []string{
	"file", "field", "n", "blank", "bad", "min", "max", "mean", "std",
	"sum", "sumsq", "variance", "coefvar", "status",
}

// Record - одна строка сводной таблицы: колонка одного файла, либо строка-ошибка
// файла (Status == stats.StatusFailed, Field пустой).
type Record struct {
	File     string
	Field    string
	N        int64
	Blank    int64
	Bad      int64
	Min      stats.Value
	Max      stats.Value
	Mean     stats.Value
	Std      stats.Value
	Sum      float64
	SumSq    float64
	Variance stats.Value
	CoefVar  stats.Value
	Status   stats.Status
	Reason   string
}

// Records раскладывает результаты в строки: по файлам в исходном порядке,
// внутри файла - в порядке колонок.
func Records(results []stats.Result) []Record {
	var out []Record
	for _, res := range results {
		if res.Status == stats.StatusFailed {
			out = append(out, Record{File: res.File, Status: res.Status, Reason: res.Reason()})
			continue
		}
		for _, c := range res.Columns {
			out = append(out, Record{
				File:     c.File,
				Field:    c.Field,
				N:        c.N,
				Blank:    c.Blank,
				Bad:      c.Bad,
				Min:      c.Min,
				Max:      c.Max,
				Mean:     c.Mean,
				Std:      c.Std,
				Sum:      c.Sum,
				SumSq:    c.SumSq,
				Variance: c.Variance,
				CoefVar:  c.CoefVar,
				Status:   res.Status,
			})
		}
	}
	return out
}

func (r Record) StatusText() string {
	if r.Reason == "" {
		return r.Status.String()
	}
	return r.Status.String() + ": " + r.Reason
}

// Strings - строка в порядке Columns. У строки-ошибки числовые поля пустые.
func (r Record) Strings() []string {
	if r.Status == stats.StatusFailed {
		row := make([]string, len(Columns))
		row[0] = r.File
		row[1] = r.Field
		row[len(row)-1] = r.StatusText()
		return row
	}
	return []string{
		r.File,
		r.Field,
		strconv.FormatInt(r.N, 10),
		strconv.FormatInt(r.Blank, 10),
		strconv.FormatInt(r.Bad, 10),
		r.Min.String(),
		r.Max.String(),
		r.Mean.String(),
		r.Std.String(),
		formatFloat(r.Sum),
		formatFloat(r.SumSq),
		r.Variance.String(),
		r.CoefVar.String(),
		r.StatusText(),
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
