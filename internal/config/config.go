package config

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix - префикс переменных окружения, например SHEETSTATS_WORKERS.
const EnvPrefix = "SHEETSTATS"

type Config struct {
	OutputPath string `envconfig:"OUTPUT"`

	// 0 - число процессоров минус один
	Workers int `envconfig:"WORKERS"`

	// появление файла останавливает обработку, проверяется каждые BatchRows строк
	StopFile  string `envconfig:"STOP_FILE" default:"STOP"`
	BatchRows int    `envconfig:"BATCH_ROWS" default:"1000"`

	// максимальное количество строк в одном xlsx результата
	MaxRows int64 `envconfig:"MAX_ROWS" default:"1000000"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	HeadersOnly bool     `ignored:"true"`
	Patterns    []string `ignored:"true"`
	Files       []string `ignored:"true"`
}

// ParseFlags читает окружение, затем флаги командной строки (флаги важнее)
// и раскрывает шаблоны файлов.
func ParseFlags(args []string, output io.Writer) (*Config, error) {

	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}

	fs := flag.NewFlagSet("sheet-stats", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Использование: sheet-stats -out FILE [флаги] файлы...\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "результирующий файл (.csv, .xlsx или - для stdout), будет перезаписан")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "количество параллельных воркеров (0 - по числу процессоров)")
	fs.StringVar(&cfg.StopFile, "stop-file", cfg.StopFile, "файл-сигнал остановки, пустая строка отключает")
	fs.IntVar(&cfg.BatchRows, "batch", cfg.BatchRows, "через сколько строк проверять сигнал остановки")
	fs.Int64Var(&cfg.MaxRows, "max-row", cfg.MaxRows, "максимальное количество строк в одном xlsx результата")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "формат логов: text или json")
	fs.BoolVar(&cfg.HeadersOnly, "headers", false, "только собрать заголовки файлов и посчитать их частоту")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Patterns = fs.Args()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	files, err := ExpandPatterns(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	cfg.Files = files

	if cfg.OutputPath != "" && cfg.OutputPath != "-" {
		cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Patterns) == 0 {
		return fmt.Errorf("необходимо указать хотя бы один файл или шаблон")
	}
	if c.OutputPath == "" && !c.HeadersOnly {
		return fmt.Errorf("необходимо указать результирующий файл через -out")
	}
	if c.Workers < 0 {
		return fmt.Errorf("количество воркеров не может быть отрицательным: %d", c.Workers)
	}
	if c.BatchRows <= 0 {
		return fmt.Errorf("размер пакета строк должен быть положительным: %d", c.BatchRows)
	}
	return nil
}

// ExpandPatterns раскрывает шаблоны вида "2017_*.xlsx". Путь без метасимволов,
// которого нет на диске, сохраняется как есть: ошибка его открытия попадёт в
// результат этого файла, а не потеряется.
func ExpandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("некорректный шаблон %q: %w", p, err)
		}
		if len(matches) == 0 && !hasMeta(p) {
			matches = []string{p}
		}
		files = append(files, matches...)
	}
	return files, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[")
}
