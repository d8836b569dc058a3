// Package compare сверяет сводную таблицу с агрегатами, полученными извне
// (например, из базы, куда эти же данные были загружены).
package compare

import (
	"math"
	"sort"
	"strings"

	"github.com/ryabkov82/sheet-stats/internal/report"
	"github.com/ryabkov82/sheet-stats/internal/stats"
)

// Aggregate - эталонные значения по одному полю.
type Aggregate struct {
	N    stats.Value
	Mean stats.Value
	Min  stats.Value
	Max  stats.Value
}

// Reference - эталон по именам полей.
type Reference map[string]Aggregate

// Tolerance - допуск |a-b| <= Abs + Rel*|b|, где b - эталон.
type Tolerance struct {
	Abs float64
	Rel float64
}

var DefaultTolerance = Tolerance{Abs: 1e-8, Rel: 1e-5}

// Close сравнивает значение таблицы a с эталоном b. Два неопределённых значения равны.
func (t Tolerance) Close(a, b stats.Value) bool {
	x, okA := a.Float()
	y, okB := b.Float()
	if !okA || !okB {
		return okA == okB
	}
	return math.Abs(x-y) <= t.Abs+t.Rel*math.Abs(y)
}

type Mismatch struct {
	Field    string      `json:"field"`
	RefField string      `json:"ref_field"`
	Stat     string      `json:"stat"`
	Sheet    stats.Value `json:"sheet"`
	Ref      stats.Value `json:"ref"`
}

type Report struct {
	File       string     `json:"file"`
	Failed     string     `json:"failed,omitempty"`
	Compared   []string   `json:"compared"`
	Mismatches []Mismatch `json:"mismatches"`
	Missing    []string   `json:"missing"`
}

// OK - всё сопоставленное совпало и ничего не потерялось.
func (r Report) OK() bool {
	return r.Failed == "" && len(r.Mismatches) == 0 && len(r.Missing) == 0
}

// Diff сравнивает колонки файла file с эталоном. mapping переводит имя колонки
// в имя поля эталона; пустой mapping означает совпадение имён. Колонки без
// сопоставления или без строки в эталоне попадают в Missing. Файл, которого
// нет в таблице, считается несверенным.
func Diff(file string, records []report.Record, ref Reference, mapping map[string]string, tol Tolerance) Report {
	rep := Report{File: file, Compared: []string{}, Mismatches: []Mismatch{}, Missing: []string{}}

	found := false
	for _, r := range records {
		if !sameFile(r.File, file) {
			continue
		}
		found = true
		if r.Status == stats.StatusFailed {
			rep.Failed = r.StatusText()
			continue
		}

		refField := r.Field
		if len(mapping) > 0 {
			var ok bool
			if refField, ok = mapping[r.Field]; !ok {
				rep.Missing = append(rep.Missing, r.Field)
				continue
			}
		}
		agg, ok := ref[refField]
		if !ok {
			rep.Missing = append(rep.Missing, r.Field)
			continue
		}

		rep.Compared = append(rep.Compared, r.Field)
		checks := []struct {
			stat       string
			sheet, ref stats.Value
		}{
			{"n", stats.Some(float64(r.N)), agg.N},
			{"mean", r.Mean, agg.Mean},
			{"min", r.Min, agg.Min},
			{"max", r.Max, agg.Max},
		}
		for _, c := range checks {
			if !tol.Close(c.sheet, c.ref) {
				rep.Mismatches = append(rep.Mismatches, Mismatch{
					Field:    r.Field,
					RefField: refField,
					Stat:     c.stat,
					Sheet:    c.sheet,
					Ref:      c.ref,
				})
			}
		}
	}

	if !found {
		rep.Failed = "файл отсутствует в сводной таблице"
	}

	sort.Strings(rep.Compared)
	sort.Strings(rep.Missing)
	return rep
}

// Files - имена файлов таблицы в порядке первого появления.
func Files(records []report.Record) []string {
	seen := make(map[string]bool)
	var files []string
	for _, r := range records {
		if !seen[r.File] {
			seen[r.File] = true
			files = append(files, r.File)
		}
	}
	return files
}

// sameFile допускает сравнение по имени без каталога; пути могут быть записаны
// на другой ОС, поэтому учитываются оба разделителя.
func sameFile(recorded, want string) bool {
	if recorded == want {
		return true
	}
	return baseName(recorded) == want
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
