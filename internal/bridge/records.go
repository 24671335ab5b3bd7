package bridge

import (
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// update runs fn against slot n under the write lock.
func (t *Table) update(n int, fn func(*record)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.lookup(n)
	if err != nil {
		return err
	}
	fn(rec)
	return nil
}

// read runs fn against slot n under the read lock.
func (t *Table) read(n int, fn func(*record)) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, err := t.lookup(n)
	if err != nil {
		return err
	}
	fn(rec)
	return nil
}

// SaveAccountInfo overwrites the account snapshot of slot n.
func (t *Table) SaveAccountInfo(n int, info model.AccountInfo) error {
	return t.update(n, func(r *record) { r.account = info })
}

func (t *Table) AccountInfo(n int) (model.AccountInfo, error) {
	var out model.AccountInfo
	err := t.read(n, func(r *record) { out = r.account })
	return out, err
}

// SaveCurrencySessionInfo records the chart slot n is attached to.
func (t *Table) SaveCurrencySessionInfo(n int, symbol string, handle int64, period int, number int64) error {
	return t.update(n, func(r *record) {
		r.pair = model.CurrencyPairInfo{
			ID:     n,
			Symbol: symbol,
			Handle: handle,
			Period: period,
			Number: number,
		}
	})
}

func (t *Table) CurrencyPair(n int) (model.CurrencyPairInfo, error) {
	var out model.CurrencyPairInfo
	err := t.read(n, func(r *record) { out = r.pair })
	return out, err
}

func (t *Table) SaveMarketInfo(n int, info model.MarketInfo) error {
	return t.update(n, func(r *record) { r.market = info })
}

func (t *Table) MarketInfo(n int) (model.MarketInfo, error) {
	var out model.MarketInfo
	err := t.read(n, func(r *record) { out = r.market })
	return out, err
}

func (t *Table) SaveMarginInfo(n int, info model.MarginInfo) error {
	return t.update(n, func(r *record) { r.margin = info })
}

func (t *Table) MarginInfo(n int) (model.MarginInfo, error) {
	var out model.MarginInfo
	err := t.read(n, func(r *record) { out = r.margin })
	return out, err
}

// PipSize derives the pip size from the market info of slot n. Five and
// three digit quotes carry a fractional pip.
func (t *Table) PipSize(n int) (float64, error) {
	m, err := t.MarketInfo(n)
	if err != nil {
		return 0, err
	}
	if m.Digits%2 == 1 {
		return m.Points * 10, nil
	}
	return m.Points, nil
}

// SetBidAsk replaces the whole quote of slot n.
func (t *Table) SetBidAsk(n int, q model.Quote) error {
	if err := t.update(n, func(r *record) { r.quote = q }); err != nil {
		return err
	}
	t.emit(EventQuote, n, q)
	return nil
}

func (t *Table) SetBid(n int, bid float64) error {
	var q model.Quote
	err := t.update(n, func(r *record) {
		r.quote.Bid = bid
		q = r.quote
	})
	if err != nil {
		return err
	}
	t.emit(EventQuote, n, q)
	return nil
}

func (t *Table) SetAsk(n int, ask float64) error {
	var q model.Quote
	err := t.update(n, func(r *record) {
		r.quote.Ask = ask
		q = r.quote
	})
	if err != nil {
		return err
	}
	t.emit(EventQuote, n, q)
	return nil
}

func (t *Table) Quote(n int) (model.Quote, error) {
	var out model.Quote
	err := t.read(n, func(r *record) { out = r.quote })
	return out, err
}

// SetLegBid stores the latest bid of leg 1..3 of slot n.
func (t *Table) SetLegBid(n, leg int, currency string, bid float64) error {
	if err := checkLeg(leg); err != nil {
		return err
	}
	return t.update(n, func(r *record) {
		r.legQuotes[leg-1] = model.LegQuote{Currency: currency, Bid: bid}
	})
}

func (t *Table) LegQuote(n, leg int) (model.LegQuote, error) {
	if err := checkLeg(leg); err != nil {
		return model.LegQuote{}, err
	}
	var out model.LegQuote
	err := t.read(n, func(r *record) { out = r.legQuotes[leg-1] })
	return out, err
}

func (t *Table) SetSwapRateLong(n int, rate float64) error {
	return t.update(n, func(r *record) { r.swaps.Long = rate })
}

func (t *Table) SetSwapRateShort(n int, rate float64) error {
	return t.update(n, func(r *record) { r.swaps.Short = rate })
}

func (t *Table) SwapRates(n int) (model.SwapRates, error) {
	var out model.SwapRates
	err := t.read(n, func(r *record) { out = r.swaps })
	return out, err
}

// SaveAllCurrencies replaces the currency list of slot n.
func (t *Table) SaveAllCurrencies(n int, currencies []string) error {
	list := append([]string(nil), currencies...)
	if err := t.update(n, func(r *record) { r.currencies = list }); err != nil {
		return err
	}
	t.logger.Debug("currencies_saved", zap.Int("session", n), zap.Int("count", len(list)))
	return nil
}

func (t *Table) AllCurrencies(n int) ([]string, error) {
	var out []string
	err := t.read(n, func(r *record) {
		out = append(make([]string, 0, len(r.currencies)), r.currencies...)
	})
	return out, err
}
