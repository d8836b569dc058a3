package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader читает текстовую таблицу с разделителем.
type CSVReader struct {
	closer io.Closer
	r      *csv.Reader
	rec    []string
	row    []any
	err    error
}

func OpenCSV(path string, comma rune) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	c := NewCSV(f, comma)
	c.closer = f
	return c, nil
}

// NewCSV оборачивает произвольный поток. BOM в начале потока пропускается.
func NewCSV(r io.Reader, comma rune) *CSVReader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	return &CSVReader{r: cr}
}

func (c *CSVReader) Next() bool {
	if c.err != nil {
		return false
	}
	rec, err := c.r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		return false
	}
	c.rec = rec
	return true
}

func (c *CSVReader) Row() ([]any, error) {
	c.row = c.row[:0]
	for _, v := range c.rec {
		c.row = append(c.row, v)
	}
	return c.row, nil
}

func (c *CSVReader) Err() error { return c.err }

func (c *CSVReader) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
