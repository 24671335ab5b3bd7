package bridge

import (
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// Pair selects a history ring: 0 is the primary symbol, 1..3 the legs.
const (
	PairPrimary = 0
	PairLeg1    = 1
	PairLeg2    = 2
	PairLeg3    = 3
)

// SaveHistoryEntry writes one candle at index of the given ring.
func (t *Table) SaveHistoryEntry(n, pair, index int, e model.RateInfo) error {
	if err := checkPair(pair); err != nil {
		return err
	}
	var werr error
	err := t.update(n, func(r *record) {
		werr = r.history[pair].Set(index, e)
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return werr
	}
	t.emit(EventHistory, n, map[string]any{"pair": pair, "index": index})
	return nil
}

// SaveHistory replaces the whole ring with the first total entries. Positions
// past the supplied entries are zero, never stale.
func (t *Table) SaveHistory(n, pair int, entries []model.RateInfo, total int) error {
	if err := checkPair(pair); err != nil {
		return err
	}
	ring := newRing(entries, total)
	if err := t.update(n, func(r *record) { r.history[pair] = ring }); err != nil {
		return err
	}

	t.logger.Debug("history_saved",
		zap.Int("session", n),
		zap.Int("pair", pair),
		zap.Int("total", ring.Len()),
	)
	t.emit(EventHistory, n, map[string]any{"pair": pair, "total": ring.Len()})
	return nil
}

// HistoryEntry reads one candle. An index outside the ring yields a zero
// candle; only the session number is checked strictly.
func (t *Table) HistoryEntry(n, pair, index int) (model.RateInfo, error) {
	if err := checkPair(pair); err != nil {
		return model.RateInfo{}, err
	}
	var out model.RateInfo
	err := t.read(n, func(r *record) { out = r.history[pair].Get(index) })
	return out, err
}

// History returns every position of the ring.
func (t *Table) History(n, pair int) ([]model.RateInfo, error) {
	if err := checkPair(pair); err != nil {
		return nil, err
	}
	var out []model.RateInfo
	err := t.read(n, func(r *record) { out = r.history[pair].Entries() })
	return out, err
}

// HistoryBufferSize is the number of primary candles held for slot n.
func (t *Table) HistoryBufferSize(n int) (int, error) {
	var size int
	err := t.read(n, func(r *record) { size = r.history[PairPrimary].Len() })
	return size, err
}

// Series copies the written part of a ring into the arrays an indicator
// calculator consumes, oldest first.
func (t *Table) Series(n, pair int) (model.PriceSeries, error) {
	if err := checkPair(pair); err != nil {
		return model.PriceSeries{}, err
	}
	var out model.PriceSeries
	err := t.read(n, func(r *record) {
		ring := &r.history[pair]
		size := ring.Len()
		out = model.PriceSeries{
			Open:   make([]float64, size),
			High:   make([]float64, size),
			Low:    make([]float64, size),
			Close:  make([]float64, size),
			Volume: make([]float64, size),
		}
		for i := 0; i < size; i++ {
			e := ring.entries[i]
			out.Open[i] = e.Open
			out.High[i] = e.High
			out.Low[i] = e.Low
			out.Close[i] = e.Close
			out.Volume[i] = e.Volume
		}
	})
	return out, err
}

// AllHistory returns every ring of the given pair, one per slot.
func (t *Table) AllHistory(pair int) ([][]model.RateInfo, error) {
	if err := checkPair(pair); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([][]model.RateInfo, len(t.records))
	for i := range t.records {
		out[i] = t.records[i].history[pair].Entries()
	}
	return out, nil
}
