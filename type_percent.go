package coinflip

import "fmt"

type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// PercentOf returns part as a percentage of whole, or 0 when whole is
// zero, so the ratio is always well-defined.
func PercentOf(part, whole Money) Percent {
	if whole.IsZero() {
		return 0
	}
	ratio := part.value.Div(whole.value).InexactFloat64()
	return Percent(ratio * 100)
}
