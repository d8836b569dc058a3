package stats

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Opener открывает табличный источник по пути.
type Opener func(path string) (RowReader, error)

// DefaultWorkers - на один меньше числа процессоров, но не меньше одного.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// Dispatcher раздаёт файлы пулу воркеров фиксированного размера. Каждый файл
// целиком обрабатывается одним воркером, ошибки изолированы по файлам.
type Dispatcher struct {
	Workers   int
	Open      Opener
	Stop      StopFunc
	BatchRows int
	Logger    *slog.Logger
}

func (d *Dispatcher) workers() int {
	if d.Workers <= 0 {
		return DefaultWorkers()
	}
	return d.Workers
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Run обрабатывает все пути и возвращает ровно один результат на путь,
// в том же порядке, что и paths.
func (d *Dispatcher) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(d.workers())
	for i, path := range paths {
		i, path := i, path // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			results[i] = d.process(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) process(ctx context.Context, path string) (res Result) {
	log := d.logger().With(slog.String("file", path))
	log.Info("обработка файла")

	defer func() {
		if r := recover(); r != nil {
			res = Failed(path, fmt.Errorf("паника при обработке файла: %v", r))
		}
		switch res.Status {
		case StatusFailed:
			log.Error("файл не обработан", slog.String("reason", res.Reason()))
		case StatusAborted:
			log.Warn("файл обработан частично", slog.Int64("rows", res.Rows))
		default:
			log.Info("файл обработан",
				slog.Int64("rows", res.Rows),
				slog.Int("columns", len(res.Columns)),
				slog.Duration("elapsed", res.Elapsed))
		}
	}()

	if d.Open == nil {
		return Failed(path, fmt.Errorf("не задан способ открытия файлов"))
	}
	rows, err := d.Open(path)
	if err != nil {
		return Failed(path, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn("ошибка закрытия файла", slog.Any("error", err))
		}
	}()

	return Aggregate(ctx, path, rows, AggregateOptions{
		Stop:      d.Stop,
		BatchRows: d.BatchRows,
		Logger:    d.Logger,
	})
}
