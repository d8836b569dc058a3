package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

// DefaultMaxRows - предел строк данных на лист (у Excel 1 048 576 строк вместе с заголовком).
const DefaultMaxRows = 1_000_000

const sheetName = "stats"

// XLSXWriter потоково пишет таблицу в книгу. Если строк больше MaxRows,
// результат разбивается на файлы <out>_partN.xlsx.
type XLSXWriter struct {
	OutputPath string
	MaxRows    int64

	split        bool
	outFile      *excelize.File
	streamWriter *excelize.StreamWriter
	headerStyle  int
	rowCounter   int64
	partCounter  int
	outputFiles  []string
}

// WriteXLSX пишет записи в path и возвращает список созданных файлов.
func WriteXLSX(path string, records []Record, maxRows int64) ([]string, error) {
	w := &XLSXWriter{OutputPath: path, MaxRows: maxRows}
	return w.Write(records)
}

func (w *XLSXWriter) Write(records []Record) (files []string, err error) {
	defer func() {
		// незавершённая книга держит временные файлы excelize
		if err != nil && w.outFile != nil {
			_ = w.outFile.Close()
			w.outFile = nil
		}
	}()

	w.split = w.MaxRows > 0 && int64(len(records)) > w.MaxRows
	w.partCounter = 1
	w.outputFiles = nil

	if w.split {
		// Удаляем старые части перед началом
		if err := removeExistingPartFiles(w.OutputPath); err != nil {
			return nil, err
		}
	}

	if err := w.newOutput(); err != nil {
		return nil, err
	}

	for _, r := range records {
		if w.split && w.rowCounter-1 >= w.MaxRows {
			if err := w.newOutput(); err != nil {
				return nil, err
			}
		}

		w.rowCounter++
		cell, _ := excelize.CoordinatesToCellName(1, int(w.rowCounter))
		if err := w.streamWriter.SetRow(cell, recordCells(r)); err != nil {
			return nil, fmt.Errorf("ошибка записи строки: %w", err)
		}
	}

	if err := w.finish(); err != nil {
		return nil, err
	}
	return w.outputFiles, nil
}

func (w *XLSXWriter) fileName() string {
	if !w.split {
		return w.OutputPath
	}
	return fmt.Sprintf("%s_part%d.xlsx", strings.TrimSuffix(w.OutputPath, ".xlsx"), w.partCounter)
}

// newOutput завершает текущий файл (если есть) и начинает новый с заголовком.
func (w *XLSXWriter) newOutput() error {
	if w.outFile != nil {
		if err := w.finish(); err != nil {
			return err
		}
		w.partCounter++
	}

	w.outFile = excelize.NewFile()
	w.streamWriter = nil
	if err := w.outFile.SetSheetName(w.outFile.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("ошибка создания листа: %w", err)
	}

	var err error
	w.headerStyle, err = w.outFile.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("ошибка создания стиля: %w", err)
	}

	w.streamWriter, err = w.outFile.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("ошибка создания StreamWriter: %w", err)
	}

	// Ширина колонок задаётся до первой строки
	if err := w.streamWriter.SetColWidth(1, 1, 40); err != nil {
		return err
	}
	if err := w.streamWriter.SetColWidth(2, 2, 20); err != nil {
		return err
	}

	headerRow := make([]interface{}, len(Columns))
	for i, h := range Columns {
		headerRow[i] = excelize.Cell{Value: h, StyleID: w.headerStyle}
	}
	if err := w.streamWriter.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("ошибка записи заголовков: %w", err)
	}
	w.rowCounter = 1

	return nil
}

func (w *XLSXWriter) finish() error {
	if w.streamWriter == nil {
		return fmt.Errorf("книга %s не подготовлена", w.fileName())
	}
	if err := w.streamWriter.Flush(); err != nil {
		return fmt.Errorf("ошибка финального flush: %w", err)
	}
	fileName := w.fileName()
	if err := w.outFile.SaveAs(fileName); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}
	_ = w.outFile.Close()
	w.outFile = nil
	w.outputFiles = append(w.outputFiles, fileName)
	return nil
}

func recordCells(r Record) []interface{} {
	row := make([]interface{}, len(Columns))
	row[0] = r.File
	row[1] = r.Field
	row[len(row)-1] = r.StatusText()
	if r.Status == stats.StatusFailed {
		return row
	}

	row[2] = r.N
	row[3] = r.Blank
	row[4] = r.Bad
	row[5] = cellValue(r.Min)
	row[6] = cellValue(r.Max)
	row[7] = cellValue(r.Mean)
	row[8] = cellValue(r.Std)
	row[9] = r.Sum
	row[10] = r.SumSq
	row[11] = cellValue(r.Variance)
	row[12] = cellValue(r.CoefVar)
	return row
}

// cellValue - неопределённое значение остаётся пустой ячейкой.
func cellValue(v stats.Value) interface{} {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return f
}

func removeExistingPartFiles(outputPath string) error {
	pattern := fmt.Sprintf("%s_part*.xlsx", strings.TrimSuffix(outputPath, ".xlsx"))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("ошибка поиска файлов по шаблону: %w", err)
	}

	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("ошибка удаления файла %s: %w", file, err)
		}
	}
	return nil
}
