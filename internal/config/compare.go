package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompareConfig описывает сверку сводной таблицы с эталонными агрегатами.
//
//	reference:
//	  sqlite: reference.db
//	  query: select field, n, mean, min, max from leg_stats where leg = 1
//	mapping:
//	  SpCond: SpCond
//	  Fluor: Fluor
//	tolerance:
//	  abs: 1e-8
//	  rel: 1e-5
type CompareConfig struct {
	Reference ReferenceConfig   `yaml:"reference"`
	Mapping   map[string]string `yaml:"mapping"`
	Tolerance ToleranceConfig   `yaml:"tolerance"`
}

type ReferenceConfig struct {
	JSON   string `yaml:"json"`   // выгрузка {"items": [...]}
	SQLite string `yaml:"sqlite"` // путь к базе sqlite
	Query  string `yaml:"query"`  // запрос, возвращающий field, n, mean, min, max
}

type ToleranceConfig struct {
	Abs float64 `yaml:"abs"`
	Rel float64 `yaml:"rel"`
}

// LoadCompare читает YAML-файл сверки.
func LoadCompare(path string) (*CompareConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}

	cfg := CompareConfig{Tolerance: ToleranceConfig{Abs: 1e-8, Rel: 1e-5}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}

	ref := cfg.Reference
	switch {
	case ref.JSON == "" && ref.SQLite == "":
		return nil, fmt.Errorf("не указан источник эталона: reference.json или reference.sqlite")
	case ref.JSON != "" && ref.SQLite != "":
		return nil, fmt.Errorf("указано два источника эталона, нужен один")
	case ref.SQLite != "" && ref.Query == "":
		return nil, fmt.Errorf("для reference.sqlite нужен reference.query")
	}
	if cfg.Tolerance.Abs < 0 || cfg.Tolerance.Rel < 0 {
		return nil, fmt.Errorf("допуски не могут быть отрицательными")
	}

	return &cfg, nil
}
