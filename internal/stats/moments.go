package stats

import "math"

// Moments - производные статистики колонки.
type Moments struct {
	Mean     Value
	Variance Value
	Std      Value
	CoefVar  Value
}

// Finalize считает среднее, дисперсию генеральной совокупности, стандартное
// отклонение и коэффициент вариации по сумме квадратов, сумме и количеству.
//
// Правила:
//   - n == 0: всё не определено;
//   - дисперсия < 0 (ошибка округления у почти постоянных колонок): std не определено,
//     сама дисперсия возвращается как посчитана;
//   - mean == 0: coefvar не определён.
func Finalize(sumsq, sum float64, n int64) Moments {
	if n == 0 {
		return Moments{}
	}
	cnt := float64(n)
	mean := sum / cnt
	variance := (sumsq - sum*sum/cnt) / cnt

	m := Moments{Mean: Some(mean), Variance: Some(variance)}
	if variance >= 0 {
		m.Std = Some(math.Sqrt(variance))
	}
	if mean != 0 && m.Std.ok {
		m.CoefVar = Some(m.Std.f / mean)
	}
	return m
}
