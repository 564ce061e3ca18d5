package trend

import (
	"math"

	"tradegate/internal/domain"
)

const (
	// minSlopeSamples is how many defined smoothed points are needed before
	// the slope is considered judgeable at all.
	minSlopeSamples = 12
	// slopeLookback spans 10 samples: last minus last-9.
	slopeLookback = 9
	// epsRelative scales the flat band with the price level so the
	// classifier behaves the same at 0.0001 and at 100000.
	epsRelative = 0.0005
	epsAbsolute = 1e-9
)

// Classify labels the market state from the smoothed series and the latest
// raw close. The rule order is deliberate: a flat slope wins over a
// price-position mismatch, which only falls through to RANGE at the end.
func Classify(ma MovingAverage, price float64) domain.Regime {
	if ma.Len() < minSlopeSamples {
		return domain.RegimeUnknown
	}

	last := ma.Last()
	slope := last - ma.Values[ma.Len()-1-slopeLookback]
	eps := math.Abs(last)*epsRelative + epsAbsolute

	switch {
	case slope > eps && price >= last:
		return domain.RegimeTrend
	case math.Abs(slope) <= eps:
		return domain.RegimeRange
	case slope < -eps && price <= last:
		return domain.RegimeWeakness
	default:
		return domain.RegimeRange
	}
}
