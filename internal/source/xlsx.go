package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXReader потоково читает первый лист книги.
//
// Значения берутся без применения числовых форматов: числа приходят как есть,
// логические - как "1"/"0". Ячейка с числом, формат которой выводит дату или
// время, приходит как time.Time.
type XLSXReader struct {
	file *excelize.File
	rows *excelize.Rows
	row  []any

	// тот же лист с применёнными форматами, идёт строка в строку с rows
	formatted *excelize.Rows
	date1904  bool
}

func OpenXLSX(path string) (*XLSXReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}

	r := &XLSXReader{file: f}

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return r, nil
	}
	sheet := sheetList[0]

	r.rows, err = f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ошибка чтения строк из %s: %w", path, err)
	}
	r.formatted, err = f.Rows(sheet)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("ошибка чтения строк из %s: %w", path, err)
	}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	return r, nil
}

func (r *XLSXReader) Next() bool {
	if r.rows == nil {
		return false
	}
	if !r.rows.Next() {
		return false
	}
	r.formatted.Next()
	return true
}

func (r *XLSXReader) Row() ([]any, error) {
	cols, err := r.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строки: %w", err)
	}

	shown, err := r.formatted.Columns()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строки: %w", err)
	}

	r.row = r.row[:0]
	for i, cellVal := range cols {
		if cellVal == "" {
			r.row = append(r.row, nil)
			continue
		}
		if i < len(shown) {
			if t, ok := r.dateValue(cellVal, shown[i]); ok {
				r.row = append(r.row, t)
				continue
			}
		}
		r.row = append(r.row, cellVal)
	}
	return r.row, nil
}

// dateValue распознаёт число, которое формат ячейки показывает как дату или
// время: сырое значение - число, а отображаемое числом не читается.
func (r *XLSXReader) dateValue(raw, shown string) (any, bool) {
	if raw == shown || isBoolText(shown) || parsesAsNumber(shown) {
		return nil, false
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	t, err := excelize.ExcelDateToTime(serial, r.date1904)
	if err != nil {
		return shown, true
	}
	return t, true
}

func isBoolText(s string) bool {
	return strings.EqualFold(s, "TRUE") || strings.EqualFold(s, "FALSE")
}

// разделители разрядов, проценты, валюта и скобки отрицательных чисел
var numberDecor = strings.NewReplacer(
	" ", "", "\u00a0", "", ",", "", "%", "", "$", "", "€", "", "£", "", "¥", "", "₽", "", "(", "-", ")", "",
)

func parsesAsNumber(s string) bool {
	_, err := strconv.ParseFloat(numberDecor.Replace(strings.TrimSpace(s)), 64)
	return err == nil
}

func (r *XLSXReader) Err() error {
	if r.rows == nil {
		return nil
	}
	return errors.Join(r.rows.Error(), r.formatted.Error())
}

func (r *XLSXReader) Close() error {
	var errs []error
	if r.rows != nil {
		errs = append(errs, r.rows.Close())
	}
	if r.formatted != nil {
		errs = append(errs, r.formatted.Close())
	}
	errs = append(errs, r.file.Close())
	return errors.Join(errs...)
}
