package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultBatchRows - как часто (в строках) проверяется сигнал остановки.
const DefaultBatchRows = 1000

var (
	ErrNoRows       = errors.New("в таблице нет строк")
	ErrInconsistent = errors.New("нарушен инвариант n+blank+bad == rows")
)

type Status int

const (
	StatusOK Status = iota
	StatusAborted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAborted:
		return "aborted"
	default:
		return "failed"
	}
}

// RowReader - однопроходный поток строк таблицы. Первая строка - заголовок.
// Срез, возвращённый Row, действителен до следующего вызова Next.
type RowReader interface {
	Next() bool
	Row() ([]any, error)
	Err() error
	Close() error
}

// ColumnStats - итоговая запись по одной колонке одного файла.
type ColumnStats struct {
	File  string
	Field string
	Accumulator
	Moments
}

// Result - результат обработки одного файла.
type Result struct {
	File    string
	Status  Status
	Err     error
	Rows    int64
	Columns []ColumnStats
	Elapsed time.Duration
}

// Column возвращает первую колонку с именем name.
func (r Result) Column(name string) (ColumnStats, bool) {
	for _, c := range r.Columns {
		if c.Field == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Reason - текст причины для неуспешного результата.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Failed собирает результат-ошибку для файла.
func Failed(file string, err error) Result {
	return Result{File: file, Status: StatusFailed, Err: err}
}

type AggregateOptions struct {
	Stop      StopFunc
	BatchRows int
	Logger    *slog.Logger
}

func (o AggregateOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o AggregateOptions) batchRows() int64 {
	if o.BatchRows <= 0 {
		return DefaultBatchRows
	}
	return int64(o.BatchRows)
}

// ReadHeader читает первую строку и возвращает имена колонок.
func ReadHeader(rows RowReader) ([]string, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("ошибка чтения заголовка: %w", err)
		}
		return nil, ErrNoRows
	}
	header, err := rows.Row()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	fields := make([]string, len(header))
	for i, v := range header {
		fields[i] = fieldName(v)
	}
	return fields, nil
}

func fieldName(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Aggregate читает заголовок и прогоняет все остальные строки через
// классификатор и аккумуляторы колонок. Закрывать rows должен вызывающий.
//
// Ячейки сверх ширины заголовка отбрасываются; недостающие в конце строки
// считаются пустыми.
func Aggregate(ctx context.Context, file string, rows RowReader, opts AggregateOptions) (res Result) {
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	log := opts.logger().With(slog.String("file", file))
	batch := opts.batchRows()
	stop := opts.Stop
	if stop == nil {
		stop = Never
	}

	fields, err := ReadHeader(rows)
	if err != nil {
		return Failed(file, err)
	}

	res = Result{File: file}
	accs := make([]Accumulator, len(fields))

	var n int64
	for rows.Next() {
		if n%batch == 0 {
			if n > 0 {
				log.Debug("прогресс", slog.Int64("rows", n))
			}
			if ctx.Err() != nil || stop() {
				log.Warn("обработка остановлена", slog.Int64("rows", n))
				res.Status = StatusAborted
				break
			}
		}

		row, err := rows.Row()
		if err != nil {
			return Failed(file, fmt.Errorf("ошибка чтения строки %d: %w", n+2, err))
		}
		n++

		for i := range accs {
			var v any
			if i < len(row) {
				v = row[i]
			}
			accs[i].Observe(Classify(v))
		}
	}
	if res.Status != StatusAborted {
		if err := rows.Err(); err != nil {
			return Failed(file, fmt.Errorf("ошибка чтения строк: %w", err))
		}
	}

	res.Rows = n
	for i := range accs {
		if got := accs[i].Rows(); got != n {
			return Failed(file, fmt.Errorf("%w: колонка %q, %d из %d", ErrInconsistent, fields[i], got, n))
		}
	}

	res.Columns = make([]ColumnStats, len(fields))
	for i, acc := range accs {
		res.Columns[i] = ColumnStats{
			File:        file,
			Field:       fields[i],
			Accumulator: acc,
			Moments:     acc.Finalize(),
		}
	}
	return res
}
