package bridge

import "github.com/pingleware/metratrader-bridge/internal/model"

// The tick pool is sized independently of the session table. A tick is keyed
// by session number and must satisfy both the session bounds and the pool
// bounds.
func (t *Table) tickSlot(n int) (*model.Tick, error) {
	if err := t.checkSession(n); err != nil {
		return nil, err
	}
	if n > t.tickCapacity {
		return nil, ErrOutOfBounds
	}
	return &t.ticks[n-1], nil
}

// SaveTick stores the latest tick for session n.
func (t *Table) SaveTick(n int, tick model.Tick) error {
	t.mu.Lock()
	slot, err := t.tickSlot(n)
	if err == nil {
		*slot = tick
	}
	t.mu.Unlock()

	if err != nil {
		return err
	}
	t.emit(EventQuote, n, tick)
	return nil
}

func (t *Table) Tick(n int) (model.Tick, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	slot, err := t.tickSlot(n)
	if err != nil {
		return model.Tick{}, err
	}
	return *slot, nil
}
