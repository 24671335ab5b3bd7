package indicator

import (
	talib "github.com/markcheno/go-talib"
	"go.uber.org/zap"
)

// Oscillator parameters, ta-lib defaults.
const (
	DefaultPeriod = 14

	stochFastK   = 5
	stochSlowK   = 3
	stochSlowD   = 3
	stochRSIK    = 5
	stochRSID    = 3
	macdFast     = 12
	macdSlow     = 26
	macdSignal   = 9
	williamsSpan = 14
	uoShort      = 7
	uoMedium     = 14
	uoLong       = 28
	rocPeriod    = 10
)

// TALib is the go-talib backed Calculator.
type TALib struct {
	logger *zap.Logger
}

func NewTALib(logger *zap.Logger) *TALib {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TALib{logger: logger}
}

// guard runs fn when the input is long enough and converts a short input, or
// a library panic on one, into a zero series of the input length.
func (c *TALib) guard(name string, size, need int, fn func() []float64) (out []float64) {
	if size < need || need < 1 {
		return make([]float64, size)
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("indicator_failed", zap.String("indicator", name), zap.Any("panic", r))
			out = make([]float64, size)
		}
	}()
	return aligned(fn(), size)
}

// guard2 is guard for functions returning two series.
func (c *TALib) guard2(name string, size, need int, fn func() ([]float64, []float64)) (a, b []float64) {
	var second []float64
	a = c.guard(name, size, need, func() []float64 {
		first, s := fn()
		second = s
		return first
	})
	if second == nil {
		return a, make([]float64, size)
	}
	return a, aligned(second, size)
}

func aligned(series []float64, size int) []float64 {
	if len(series) == size {
		return series
	}
	out := make([]float64, size)
	copy(out[max(0, size-len(series)):], series)
	return out
}

func (c *TALib) SMA(values []float64, period int) []float64 {
	return c.guard("sma", len(values), period, func() []float64 {
		return talib.Sma(values, period)
	})
}

func (c *TALib) EMA(values []float64, period int) []float64 {
	return c.guard("ema", len(values), period, func() []float64 {
		return talib.Ema(values, period)
	})
}

// Oscillators computes the oscillator set. period drives RSI, CCI and ATR;
// a non-positive period uses DefaultPeriod.
func (c *TALib) Oscillators(high, low, closes []float64, period int) Oscillators {
	if period <= 0 {
		period = DefaultPeriod
	}
	size := len(closes)
	if len(high) != size || len(low) != size {
		c.logger.Warn("indicator_input_mismatch",
			zap.Int("high", len(high)),
			zap.Int("low", len(low)),
			zap.Int("close", len(closes)),
		)
		size = min(len(high), len(low), len(closes))
		high, low, closes = high[:size], low[:size], closes[:size]
	}

	var o Oscillators
	o.RSI = c.guard("rsi", size, period+1, func() []float64 {
		return talib.Rsi(closes, period)
	})
	o.StochK, o.StochD = c.guard2("stoch", size, stochFastK+stochSlowK+stochSlowD, func() ([]float64, []float64) {
		return talib.Stoch(high, low, closes, stochFastK, stochSlowK, talib.SMA, stochSlowD, talib.SMA)
	})
	o.StochRSIK, o.StochRSID = c.guard2("stochrsi", size, period+stochRSIK+stochRSID+1, func() ([]float64, []float64) {
		return talib.StochRsi(closes, period, stochRSIK, stochRSID, talib.SMA)
	})

	var sig, hist []float64
	o.MACD = c.guard("macd", size, macdSlow+macdSignal, func() []float64 {
		m, s, h := talib.Macd(closes, macdFast, macdSlow, macdSignal)
		sig, hist = s, h
		return m
	})
	o.MACDSignal = zeroIfNil(sig, size)
	o.MACDHist = zeroIfNil(hist, size)

	o.Williams = c.guard("willr", size, williamsSpan, func() []float64 {
		return talib.WillR(high, low, closes, williamsSpan)
	})
	o.CCI = c.guard("cci", size, period, func() []float64 {
		return talib.Cci(high, low, closes, period)
	})
	o.ATR = c.guard("atr", size, period+1, func() []float64 {
		return talib.Atr(high, low, closes, period)
	})
	o.UO = c.guard("ultosc", size, uoLong+1, func() []float64 {
		return talib.UltOsc(high, low, closes, uoShort, uoMedium, uoLong)
	})
	o.ROC = c.guard("roc", size, rocPeriod+1, func() []float64 {
		return talib.Roc(closes, rocPeriod)
	})
	return o
}

func zeroIfNil(series []float64, size int) []float64 {
	if series == nil {
		return make([]float64, size)
	}
	return aligned(series, size)
}
