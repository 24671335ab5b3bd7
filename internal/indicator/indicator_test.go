package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func rising(n int) model.PriceSeries {
	s := model.PriceSeries{
		High:  make([]float64, n),
		Low:   make([]float64, n),
		Close: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c := 1.0 + float64(i)*0.01
		s.Close[i] = c
		s.High[i] = c + 0.005
		s.Low[i] = c - 0.005
	}
	return s
}

func TestTALibSMA(t *testing.T) {
	calc := NewTALib(zaptest.NewLogger(t))
	out := calc.SMA([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)
	require.Len(t, out, 10)
	assert.InDelta(t, 8.0, out[9], 1e-9)
}

func TestTALibShortInputIsZero(t *testing.T) {
	calc := NewTALib(zaptest.NewLogger(t))
	in := []float64{1, 2, 3}

	assert.Equal(t, []float64{0, 0, 0}, calc.SMA(in, 200))
	assert.Equal(t, []float64{0, 0, 0}, calc.EMA(in, 50))

	o := calc.Oscillators(in, in, in, 14)
	assert.Len(t, o.RSI, 3)
	assert.Len(t, o.MACDSignal, 3)
	assert.Len(t, o.StochD, 3)
	assert.Equal(t, 0.0, last(o.UO))
}

func TestTALibEmptyInput(t *testing.T) {
	calc := NewTALib(nil)
	assert.Empty(t, calc.SMA(nil, 5))
	o := calc.Oscillators(nil, nil, nil, 0)
	assert.Empty(t, o.ATR)
}

func TestTALibOscillatorsOnFullRing(t *testing.T) {
	calc := NewTALib(zaptest.NewLogger(t))
	s := rising(100)

	o := calc.Oscillators(s.High, s.Low, s.Close, 14)
	for name, series := range map[string][]float64{
		"rsi": o.RSI, "stoch": o.StochK, "macd": o.MACD, "willr": o.Williams,
		"cci": o.CCI, "atr": o.ATR, "uo": o.UO, "roc": o.ROC,
	} {
		assert.Len(t, series, 100, name)
	}
	assert.Greater(t, last(o.RSI), 70.0)
	assert.Greater(t, last(o.ROC), 0.0)
	assert.Greater(t, last(o.ATR), 0.0)
}

func TestMovingAveragesOnRisingSeries(t *testing.T) {
	calc := NewTALib(zaptest.NewLogger(t))
	sum := MovingAverages(calc, rising(100))

	assert.Equal(t, Buy, sum.MovingAverages.SMA["MA5"].Signal)
	assert.Equal(t, Buy, sum.MovingAverages.EMA["MA50"].Signal)
	// 200 periods never fit in the ring
	assert.Equal(t, Neutral, sum.MovingAverages.SMA["MA200"].Signal)
	assert.Equal(t, 0.0, sum.MovingAverages.SMA["MA200"].Value)

	assert.Equal(t, 12, sum.Count.TotalBuy+sum.Count.TotalSell+sum.Count.TotalNeutral)
	assert.Equal(t, Buy, sum.Summary)
	assert.Equal(t, sum.Summary, sum.MovingAverages.Summary)
}

// fixedCalc returns constant series so signal rules can be checked directly.
type fixedCalc struct {
	ma  float64
	osc Oscillators
}

func (f fixedCalc) SMA(values []float64, _ int) []float64 {
	return constant(len(values), f.ma)
}

func (f fixedCalc) EMA(values []float64, _ int) []float64 {
	return constant(len(values), f.ma)
}

func (f fixedCalc) Oscillators(_, _, _ []float64, _ int) Oscillators {
	return f.osc
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMovingAveragesSellWhenBelowLines(t *testing.T) {
	s := model.PriceSeries{Close: []float64{1.0, 1.0}}
	sum := MovingAverages(fixedCalc{ma: 2.0}, s)
	assert.Equal(t, 12, sum.Count.TotalSell)
	assert.Equal(t, Sell, sum.Summary)
}

func TestTechnicalIndicatorsSignals(t *testing.T) {
	osc := Oscillators{
		RSI:        []float64{25},
		StochK:     []float64{85},
		StochRSIK:  []float64{10},
		MACD:       []float64{0.5},
		MACDSignal: []float64{0.2},
		Williams:   []float64{-90},
		CCI:        []float64{150},
		ATR:        []float64{0.001},
		UO:         []float64{50},
		ROC:        []float64{-1.5},
	}
	sum := TechnicalIndicators(fixedCalc{osc: osc}, model.PriceSeries{}, 14)

	assert.Equal(t, Buy, sum.Indicators.RSI.Signal)
	assert.Equal(t, Sell, sum.Indicators.Stoch.Signal)
	assert.Equal(t, Buy, sum.Indicators.StochRSI.Signal)
	assert.Equal(t, Buy, sum.Indicators.MACD.Signal)
	assert.Equal(t, Buy, sum.Indicators.Williams.Signal)
	assert.Equal(t, Sell, sum.Indicators.CCI.Signal)
	assert.Equal(t, Neutral, sum.Indicators.ATR.Signal)
	assert.Equal(t, Neutral, sum.Indicators.UO.Signal)
	assert.Equal(t, Sell, sum.Indicators.ROC.Signal)

	assert.Equal(t, Count{TotalBuy: 4, TotalSell: 3, TotalNeutral: 2}, sum.Count)
	assert.Equal(t, Buy, sum.Summary)
}

func TestCountVerdictTieIsNeutral(t *testing.T) {
	assert.Equal(t, Neutral, Count{TotalBuy: 3, TotalSell: 3}.Verdict())
	assert.Equal(t, Neutral, Count{TotalBuy: 2, TotalNeutral: 2}.Verdict())
	assert.Equal(t, Sell, Count{TotalSell: 2, TotalNeutral: 1}.Verdict())
}
