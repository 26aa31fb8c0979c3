package projection

import (
	"time"

	"github.com/aevon-lab/logagg/internal/core/storage"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// rollupRates returns unique and duplicate events as percentages of received,
// rounded half away from zero to two decimal places. Both are 0 before the first event.
func rollupRates(c storage.Counters) (uniqueRate, duplicateRate float64) {
	if c.Received <= 0 {
		return 0, 0
	}
	return percentOf(c.UniqueProcessed, c.Received), percentOf(c.DuplicateDropped, c.Received)
}

func percentOf(part, total int64) float64 {
	pct := decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(total)).
		Round(2)
	return pct.InexactFloat64()
}

// roundSeconds renders a duration as seconds with millisecond precision.
func roundSeconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return decimal.NewFromInt(d.Milliseconds()).Shift(-3).InexactFloat64()
}
