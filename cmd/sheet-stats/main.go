package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ryabkov82/sheet-stats/internal/config"
	"github.com/ryabkov82/sheet-stats/internal/logging"
	"github.com/ryabkov82/sheet-stats/internal/report"
	"github.com/ryabkov82/sheet-stats/internal/scan"
	"github.com/ryabkov82/sheet-stats/internal/source"
	"github.com/ryabkov82/sheet-stats/internal/stats"
)

type Output struct {
	Success     bool               `json:"success"`
	OutputFiles []string           `json:"output_files,omitempty"`
	Error       string             `json:"error,omitempty"`
	Duration    string             `json:"duration"`
	Files       int                `json:"files"`
	Failed      []string           `json:"failed,omitempty"`
	Aborted     []string           `json:"aborted,omitempty"`
	Headers     []scan.FileHeaders `json:"headers,omitempty"`
	Inventory   []scan.HeaderCount `json:"inventory,omitempty"`
}

func main() {

	start := time.Now()

	cfg, err := config.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		emitJSON(Output{
			Success:  false,
			Error:    fmt.Sprintf("Ошибка конфигурации: %v", err),
			Duration: time.Since(start).String(),
		})
		return
	}

	// stdout занят JSON-итогом, логи идут в stderr
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.OutputPath == "-" {
		// таблица идёт в stdout, итог - в stderr
		jsonOut = os.Stderr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.HeadersOnly {
		headers := scan.Headers(ctx, source.Open, cfg.Files, cfg.Workers)
		emitJSON(Output{
			Success:   true,
			Files:     len(headers),
			Headers:   headers,
			Inventory: scan.Inventory(headers),
			Duration:  time.Since(start).String(),
		})
		return
	}

	out, err := run(ctx, cfg, logger, os.Stdout)
	out.Duration = time.Since(start).String()
	if err != nil {
		out.Success = false
		out.Error = fmt.Sprintf("Ошибка записи результата: %v", err)
	}
	emitJSON(out)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) (Output, error) {
	workers := cfg.Workers
	if workers == 0 {
		workers = stats.DefaultWorkers()
	}
	d := &stats.Dispatcher{
		Workers:   workers,
		Open:      source.Open,
		Stop:      stats.StopFile(cfg.StopFile),
		BatchRows: cfg.BatchRows,
		Logger:    logger,
	}
	logger.Info("старт", slog.Int("files", len(cfg.Files)), slog.Int("workers", d.Workers))

	results := d.Run(ctx, cfg.Files)

	out := Output{Success: true, Files: len(results)}
	for _, res := range results {
		switch res.Status {
		case stats.StatusFailed:
			out.Failed = append(out.Failed, res.File)
		case stats.StatusAborted:
			out.Aborted = append(out.Aborted, res.File)
		}
	}

	files, err := report.Write(cfg.OutputPath, report.Records(results), cfg.MaxRows, stdout)
	if err != nil {
		return out, err
	}
	out.OutputFiles = files
	return out, nil
}

var jsonOut io.Writer = os.Stdout

func emitJSON(out Output) {
	enc := json.NewEncoder(jsonOut)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
}
