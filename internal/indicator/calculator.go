// Package indicator turns a session's candle history into moving-average and
// oscillator readings. The math is delegated to a Calculator so the bridge
// never depends on a specific technical-analysis library.
package indicator

// Oscillators is the full oscillator set computed over one series. Every
// slice is aligned with the input, oldest first.
type Oscillators struct {
	RSI        []float64
	StochK     []float64
	StochD     []float64
	StochRSIK  []float64
	StochRSID  []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	Williams   []float64
	CCI        []float64
	ATR        []float64
	UO         []float64
	ROC        []float64
}

// Calculator computes indicator series. Implementations must return a slice
// of len(values) even when the input is too short for the period.
type Calculator interface {
	SMA(values []float64, period int) []float64
	EMA(values []float64, period int) []float64
	Oscillators(high, low, closes []float64, period int) Oscillators
}

// last returns the most recent value of a series, 0 when empty.
func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
