package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ryabkov82/sheet-stats/internal/compare"
	"github.com/ryabkov82/sheet-stats/internal/config"
	"github.com/ryabkov82/sheet-stats/internal/logging"
	"github.com/ryabkov82/sheet-stats/internal/report"
)

type Output struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	Duration string           `json:"duration"`
	Reports  []compare.Report `json:"reports,omitempty"`
}

func main() {

	start := time.Now()

	statsPath := flag.String("stats", "", "сводная таблица sheet-stats (.csv)")
	configPath := flag.String("config", "compare.yaml", "настройки сверки")
	file := flag.String("file", "", "файл из таблицы для сверки (по умолчанию все)")
	logLevel := flag.String("log-level", "info", "уровень логирования")
	flag.Parse()

	logging.Setup(*logLevel, "text", os.Stderr)

	reports, err := run(context.Background(), *statsPath, *configPath, *file)
	if err != nil {
		emitJSON(Output{
			Success:  false,
			Error:    fmt.Sprintf("Ошибка сверки: %v", err),
			Duration: time.Since(start).String(),
		})
		return
	}

	ok := true
	for _, r := range reports {
		ok = ok && r.OK()
	}
	emitJSON(Output{
		Success:  ok,
		Reports:  reports,
		Duration: time.Since(start).String(),
	})
}

func run(ctx context.Context, statsPath, configPath, file string) ([]compare.Report, error) {
	if statsPath == "" {
		return nil, fmt.Errorf("необходимо указать таблицу через -stats")
	}

	cfg, err := config.LoadCompare(configPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(statsPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия %s: %w", statsPath, err)
	}
	defer f.Close()
	records, err := report.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", statsPath, err)
	}

	ref, err := loadReference(ctx, cfg.Reference)
	if err != nil {
		return nil, err
	}

	files := []string{file}
	if file == "" {
		files = compare.Files(records)
	}

	tol := compare.Tolerance{Abs: cfg.Tolerance.Abs, Rel: cfg.Tolerance.Rel}
	reports := make([]compare.Report, 0, len(files))
	for _, name := range files {
		reports = append(reports, compare.Diff(name, records, ref, cfg.Mapping, tol))
	}
	return reports, nil
}

func loadReference(ctx context.Context, rc config.ReferenceConfig) (compare.Reference, error) {
	if rc.JSON != "" {
		f, err := os.Open(rc.JSON)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия %s: %w", rc.JSON, err)
		}
		defer f.Close()
		return compare.LoadJSON(f)
	}

	db, err := compare.OpenSQLite(rc.SQLite)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return compare.LoadSQL(ctx, db, rc.Query)
}

func emitJSON(out Output) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
}
