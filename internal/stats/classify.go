package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind uint8

const (
	KindBlank Kind = iota
	KindNumeric
	KindBad
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindNumeric:
		return "numeric"
	default:
		return "bad"
	}
}

// Class - результат классификации одной ячейки. X имеет смысл только для KindNumeric.
type Class struct {
	Kind Kind
	X    float64
}

var (
	Blank = Class{Kind: KindBlank}
	Bad   = Class{Kind: KindBad}
)

func Numeric(x float64) Class { return Class{Kind: KindNumeric, X: x} }

// Classify определяет, является ли значение ячейки пустым, числом или
// нечисловым мусором. Ошибка приведения к числу - это результат, а не ошибка.
func Classify(v any) Class {
	switch t := v.(type) {
	case nil:
		return Blank
	case string:
		return classifyText(t)
	case []byte:
		return classifyText(string(t))
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return Numeric(float64(t))
	case int8:
		return Numeric(float64(t))
	case int16:
		return Numeric(float64(t))
	case int32:
		return Numeric(float64(t))
	case int64:
		return Numeric(float64(t))
	case uint:
		return Numeric(float64(t))
	case uint8:
		return Numeric(float64(t))
	case uint16:
		return Numeric(float64(t))
	case uint32:
		return Numeric(float64(t))
	case uint64:
		return Numeric(float64(t))
	case bool:
		if t {
			return Numeric(1)
		}
		return Numeric(0)
	case time.Time, *time.Time:
		return Bad
	case fmt.Stringer:
		s, ok := stringOf(t)
		if !ok {
			return Bad
		}
		return classifyText(s)
	default:
		return Bad
	}
}

func classifyText(s string) Class {
	s = strings.TrimSpace(s)
	if s == "" {
		return Blank
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Bad
	}
	return finite(x)
}

func finite(x float64) Class {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Bad
	}
	return Numeric(x)
}

// stringOf защищает от String() на nil-указателе.
func stringOf(s fmt.Stringer) (str string, ok bool) {
	defer func() {
		if recover() != nil {
			str, ok = "", false
		}
	}()
	return s.String(), true
}
