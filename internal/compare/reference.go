package compare

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ryabkov82/sheet-stats/internal/stats"
)

type jsonItem struct {
	Field string   `json:"field"`
	N     *float64 `json:"n"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// LoadJSON читает выгрузку вида {"items": [{"field": "SpCond", "n": 10, ...}]}.
// Имена ключей сравниваются без учёта регистра.
func LoadJSON(r io.Reader) (Reference, error) {
	var doc struct {
		Items []jsonItem `json:"items"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора выгрузки: %w", err)
	}

	ref := make(Reference, len(doc.Items))
	for i, it := range doc.Items {
		field := strings.TrimSpace(it.Field)
		if field == "" {
			return nil, fmt.Errorf("элемент %d: пустое поле field", i)
		}
		ref[field] = Aggregate{
			N:    ptrValue(it.N),
			Mean: ptrValue(it.Mean),
			Min:  ptrValue(it.Min),
			Max:  ptrValue(it.Max),
		}
	}
	return ref, nil
}

func ptrValue(p *float64) stats.Value {
	if p == nil {
		return stats.None
	}
	return stats.Some(*p)
}

// OpenSQLite открывает базу sqlite с эталонными данными.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка подключения к базе %s: %w", path, err)
	}
	return db, nil
}

// LoadSQL выполняет запрос, возвращающий колонки field, n, mean, min, max.
func LoadSQL(ctx context.Context, db *sql.DB, query string, args ...any) (Reference, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	ref := make(Reference)
	for rows.Next() {
		var (
			field           sql.NullString
			n, mean, lo, hi sql.NullFloat64
		)
		if err := rows.Scan(&field, &n, &mean, &lo, &hi); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		if !field.Valid {
			continue
		}
		ref[strings.TrimSpace(field.String)] = Aggregate{
			N:    nullValue(n),
			Mean: nullValue(mean),
			Min:  nullValue(lo),
			Max:  nullValue(hi),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения результата: %w", err)
	}
	return ref, nil
}

func nullValue(v sql.NullFloat64) stats.Value {
	if !v.Valid {
		return stats.None
	}
	return stats.Some(v.Float64)
}
