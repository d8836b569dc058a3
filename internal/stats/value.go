package stats

import (
	"math"
	"strconv"
)

// Value - числовая статистика, которая может быть не определена
// (min пустой колонки, среднее при n == 0, коэффициент вариации при нулевом среднем).
type Value struct {
	f  float64
	ok bool
}

// None - неопределённое значение.
var None = Value{}

// Some возвращает определённое значение. NaN превращается в None.
func Some(f float64) Value {
	if math.IsNaN(f) {
		return None
	}
	return Value{f: f, ok: true}
}

func (v Value) Float() (float64, bool) { return v.f, v.ok }

func (v Value) Valid() bool { return v.ok }

// Or возвращает значение или def, если значение не определено.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.f
}

// NaN возвращает значение, либо math.NaN() для неопределённого.
func (v Value) NaN() float64 { return v.Or(math.NaN()) }

func (v Value) String() string {
	if !v.ok {
		return "nan"
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

// MarshalJSON пишет неопределённое значение как null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok || math.IsInf(v.f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.f, 'g', -1, 64), nil
}
