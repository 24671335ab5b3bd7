package bridge

import "github.com/pingleware/metratrader-bridge/internal/model"

// Ring is a fixed-capacity, position-indexed candle buffer. Index 0 holds the
// oldest candle.
type Ring struct {
	entries [HistoryCapacity]model.RateInfo
	size    int
}

// newRing builds a fresh ring from a bulk payload. total is clamped to
// [0, HistoryCapacity]; positions without an input entry stay zero.
func newRing(entries []model.RateInfo, total int) Ring {
	if total > HistoryCapacity {
		total = HistoryCapacity
	}
	if total < 0 {
		total = 0
	}
	var r Ring
	for i := 0; i < total && i < len(entries); i++ {
		r.entries[i] = entries[i]
	}
	r.size = total
	return r
}

// Set stores e at index i.
func (r *Ring) Set(i int, e model.RateInfo) error {
	if i < 0 || i >= HistoryCapacity {
		return ErrIndexRange
	}
	r.entries[i] = e
	if i+1 > r.size {
		r.size = i + 1
	}
	return nil
}

// Get returns the entry at i, or a zero entry when i is outside the ring.
func (r *Ring) Get(i int) model.RateInfo {
	if i < 0 || i >= HistoryCapacity {
		return model.RateInfo{}
	}
	return r.entries[i]
}

// Len is the number of positions written so far.
func (r *Ring) Len() int {
	return r.size
}

// Entries returns a copy of every position, written or not.
func (r *Ring) Entries() []model.RateInfo {
	out := make([]model.RateInfo, HistoryCapacity)
	copy(out, r.entries[:])
	return out
}
