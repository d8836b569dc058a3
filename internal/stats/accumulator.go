package stats

// Accumulator хранит текущие суммы по одной колонке. Значения никогда не
// перечитываются, поэтому память не зависит от числа строк.
type Accumulator struct {
	N     int64 // валидные числа
	Blank int64 // пустые ячейки
	Bad   int64 // непустые, но не числа
	Sum   float64
	SumSq float64
	Min   Value
	Max   Value
}

// Observe учитывает одну классифицированную ячейку.
func (a *Accumulator) Observe(c Class) {
	switch c.Kind {
	case KindBlank:
		a.Blank++
	case KindBad:
		a.Bad++
	case KindNumeric:
		x := c.X
		if a.N == 0 {
			a.Min, a.Max = Some(x), Some(x)
		} else {
			if x < a.Min.f {
				a.Min = Some(x)
			}
			if x > a.Max.f {
				a.Max = Some(x)
			}
		}
		a.N++
		a.Sum += x
		a.SumSq += x * x
	}
}

// Rows - сколько ячеек учтено всего.
func (a Accumulator) Rows() int64 { return a.N + a.Blank + a.Bad }

func (a Accumulator) Finalize() Moments { return Finalize(a.SumSq, a.Sum, a.N) }
