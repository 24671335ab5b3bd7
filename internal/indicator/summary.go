package indicator

import (
	"fmt"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// Signal is the action suggested by one reading.
type Signal string

const (
	Buy     Signal = "Buy"
	Sell    Signal = "Sell"
	Neutral Signal = "Neutral"
)

// MovingAveragePeriods are the lines reported by MovingAverages. Periods
// longer than the history read as zero and count as neutral.
var MovingAveragePeriods = []int{5, 10, 20, 50, 100, 200}

// Reading is one indicator value with its signal.
type Reading struct {
	Value  float64 `json:"v"`
	Signal Signal  `json:"s"`
}

// Count tallies the signals of a summary document.
type Count struct {
	TotalBuy     int `json:"Total_Buy"`
	TotalSell    int `json:"Total_Sell"`
	TotalNeutral int `json:"Total_Neutral"`
}

func (c *Count) add(s Signal) {
	switch s {
	case Buy:
		c.TotalBuy++
	case Sell:
		c.TotalSell++
	default:
		c.TotalNeutral++
	}
}

// Verdict is the majority signal; ties are neutral.
func (c Count) Verdict() Signal {
	switch {
	case c.TotalBuy > c.TotalSell && c.TotalBuy > c.TotalNeutral:
		return Buy
	case c.TotalSell > c.TotalBuy && c.TotalSell > c.TotalNeutral:
		return Sell
	default:
		return Neutral
	}
}

type MovingAverageLines struct {
	SMA     map[string]Reading `json:"SMA"`
	EMA     map[string]Reading `json:"EMA"`
	Summary Signal             `json:"summary"`
}

type MovingAverageSummary struct {
	Summary        Signal             `json:"summary"`
	Count          Count              `json:"count"`
	MovingAverages MovingAverageLines `json:"moving_averages"`
}

// MovingAverages rates the latest close against each SMA and EMA line.
func MovingAverages(calc Calculator, s model.PriceSeries) MovingAverageSummary {
	price := last(s.Close)
	lines := MovingAverageLines{
		SMA: make(map[string]Reading, len(MovingAveragePeriods)),
		EMA: make(map[string]Reading, len(MovingAveragePeriods)),
	}
	var count Count
	for _, p := range MovingAveragePeriods {
		key := fmt.Sprintf("MA%d", p)

		sma := Reading{Value: last(calc.SMA(s.Close, p))}
		sma.Signal = compare(price, sma.Value)
		lines.SMA[key] = sma
		count.add(sma.Signal)

		ema := Reading{Value: last(calc.EMA(s.Close, p))}
		ema.Signal = compare(price, ema.Value)
		lines.EMA[key] = ema
		count.add(ema.Signal)
	}
	verdict := count.Verdict()
	lines.Summary = verdict
	return MovingAverageSummary{Summary: verdict, Count: count, MovingAverages: lines}
}

// compare is the price-versus-line rule: above is a buy.
func compare(price, line float64) Signal {
	switch {
	case line == 0 || price == line:
		return Neutral
	case price > line:
		return Buy
	default:
		return Sell
	}
}

type IndicatorLines struct {
	RSI      Reading `json:"RSI"`
	Stoch    Reading `json:"STOCH"`
	StochRSI Reading `json:"STOCHRSI"`
	MACD     Reading `json:"MACD"`
	Williams Reading `json:"Williams"`
	CCI      Reading `json:"CCI"`
	ATR      Reading `json:"ATR"`
	UO       Reading `json:"UO"`
	ROC      Reading `json:"ROC"`
	Summary  Signal  `json:"summary"`
}

type IndicatorSummary struct {
	Summary    Signal         `json:"summary"`
	Count      Count          `json:"count"`
	Indicators IndicatorLines `json:"indicators"`
}

// TechnicalIndicators rates the latest value of each oscillator.
func TechnicalIndicators(calc Calculator, s model.PriceSeries, period int) IndicatorSummary {
	o := calc.Oscillators(s.High, s.Low, s.Close, period)

	lines := IndicatorLines{
		RSI:      band(last(o.RSI), 30, 70),
		Stoch:    band(last(o.StochK), 20, 80),
		StochRSI: band(last(o.StochRSIK), 20, 80),
		Williams: band(last(o.Williams), -80, -20),
		CCI:      band(last(o.CCI), -100, 100),
		UO:       band(last(o.UO), 30, 70),
		ATR:      Reading{Value: last(o.ATR), Signal: Neutral},
	}

	macd, sig := last(o.MACD), last(o.MACDSignal)
	lines.MACD = Reading{Value: macd, Signal: Neutral}
	if macd != 0 || sig != 0 {
		switch {
		case macd > sig:
			lines.MACD.Signal = Buy
		case macd < sig:
			lines.MACD.Signal = Sell
		}
	}

	roc := last(o.ROC)
	lines.ROC = Reading{Value: roc, Signal: Neutral}
	switch {
	case roc > 0:
		lines.ROC.Signal = Buy
	case roc < 0:
		lines.ROC.Signal = Sell
	}

	var count Count
	for _, r := range []Reading{lines.RSI, lines.Stoch, lines.StochRSI, lines.MACD, lines.Williams, lines.CCI, lines.ATR, lines.UO, lines.ROC} {
		count.add(r.Signal)
	}
	verdict := count.Verdict()
	lines.Summary = verdict
	return IndicatorSummary{Summary: verdict, Count: count, Indicators: lines}
}

// band is the oversold/overbought rule: below low is a buy, above high a sell.
// A zero value means the series was too short and is neutral.
func band(v, low, high float64) Reading {
	r := Reading{Value: v, Signal: Neutral}
	switch {
	case v == 0:
	case v < low:
		r.Signal = Buy
	case v > high:
		r.Signal = Sell
	}
	return r
}
