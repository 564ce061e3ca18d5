package trend

import (
	"tradegate/internal/domain"
)

// Window is the smoothing window used for the regime chart, matching the MA30
// line drawn on it.
const Window = 30

// MovingAverage is the defined suffix of a rolling mean. Values[i] is the mean
// of the window ending at source index Offset+i; indices below Offset carry no
// value at all rather than a sentinel.
type MovingAverage struct {
	Offset int
	Values []float64
}

// Len reports the number of defined points.
func (m MovingAverage) Len() int { return len(m.Values) }

// Last returns the newest defined value.
func (m MovingAverage) Last() float64 { return m.Values[len(m.Values)-1] }

// SMA computes the simple moving average of closing prices over the given
// window. The input is chronological (oldest first) and is not mutated. An
// empty input is the only failure.
func SMA(candles []domain.Candle, window int) (MovingAverage, error) {
	if len(candles) == 0 {
		return MovingAverage{}, domain.ErrInsufficientData
	}
	if window <= 0 {
		window = Window
	}
	if len(candles) < window {
		return MovingAverage{Offset: len(candles)}, nil
	}

	values := make([]float64, 0, len(candles)-window+1)
	for i := window - 1; i < len(candles); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += candles[j].Close
		}
		values = append(values, sum/float64(window))
	}

	return MovingAverage{Offset: window - 1, Values: values}, nil
}
