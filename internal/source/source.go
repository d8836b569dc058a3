// Package source открывает табличные файлы как однопроходный поток строк.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

var ErrUnsupported = errors.New("неподдерживаемый формат файла")

// Open выбирает читателя по расширению файла.
func Open(path string) (stats.RowReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		r, err := OpenXLSX(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	case ".csv", ".txt":
		return openCSV(path, ',')
	case ".tsv":
		return openCSV(path, '\t')
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

func openCSV(path string, comma rune) (stats.RowReader, error) {
	r, err := OpenCSV(path, comma)
	if err != nil {
		return nil, err
	}
	return r, nil
}
