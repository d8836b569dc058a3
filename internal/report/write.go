package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Write сохраняет таблицу: ".xlsx" - в книгу, "-" - CSV в stdout, иначе CSV-файл.
// Возвращает список записанных файлов.
func Write(path string, records []Record, maxRows int64, stdout io.Writer) ([]string, error) {
	if path == "-" {
		if err := WriteCSV(stdout, records); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, records, maxRows)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("ошибка сохранения файла %s: %w", path, err)
	}
	return []string{path}, nil
}
