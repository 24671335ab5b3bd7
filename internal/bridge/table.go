package bridge

import (
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// releasedSymbol is what a terminal sees as the symbol of a released slot.
const releasedSymbol = "0"

// FindExisting returns the number of the first occupied slot whose account,
// handle and symbol all match.
func (t *Table) FindExisting(account, handle int64, symbol string) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.records {
		s := &t.records[i].session
		if s.Free() {
			continue
		}
		if s.AccountNumber == account && s.Handle == handle && s.Symbol == symbol {
			return i + 1, nil
		}
	}
	return 0, ErrSessionNotFound
}

// Initialize claims the first slot that is either free or already owned by
// the same account and handle, overwrites its identity and clears the pending
// command. The session counter only grows when a free slot is claimed.
func (t *Table) Initialize(account, handle int64, symbol, symbol1, symbol2, symbol3 string) (int, error) {
	t.mu.Lock()
	n, fresh := 0, false
	for i := range t.records {
		rec := &t.records[i]
		s := &rec.session
		free := s.Free()
		if !free && (s.AccountNumber != account || s.Handle != handle) {
			continue
		}

		n, fresh = i+1, free
		s.Index = n
		s.AccountNumber = account
		s.Handle = handle
		s.Symbol = symbol
		s.Symbol1 = symbol1
		s.Symbol2 = symbol2
		s.Symbol3 = symbol3
		rec.trade.Cmd = model.OpUnknown
		rec.queuePos = 0
		if fresh {
			t.sessionCount++
		}
		break
	}
	count := t.sessionCount
	t.mu.Unlock()

	if n == 0 {
		t.logger.Warn("table_full",
			zap.Int64("account", account),
			zap.Int64("handle", handle),
			zap.String("symbol", symbol),
			zap.Int("capacity", t.capacity),
		)
		return 0, ErrTableFull
	}

	t.logger.Info("session_initialized",
		zap.Int("session", n),
		zap.Int64("account", account),
		zap.Int64("handle", handle),
		zap.String("symbol", symbol),
		zap.Bool("reused", !fresh),
		zap.Int("session_count", count),
	)
	t.emit(EventSessionInitialized, n, map[string]any{
		"account": account,
		"handle":  handle,
		"symbol":  symbol,
		"reused":  !fresh,
	})
	return n, nil
}

// InitializeLeg1 claims the first free slot for the first leg of a
// multi-currency strategy and tags it with magic.
func (t *Table) InitializeLeg1(account, handle int64, symbol, magic string) (int, error) {
	t.mu.Lock()
	n := 0
	for i := range t.records {
		rec := &t.records[i]
		if !rec.session.Free() {
			continue
		}
		n = i + 1
		rec.session.Index = n
		rec.session.AccountNumber = account
		rec.session.Handle = handle
		rec.session.Symbol1 = symbol
		rec.session.Magic = magic
		rec.trade.Cmd1 = model.OpNone
		rec.trade.Cmd2 = model.OpNone
		rec.trade.Cmd3 = model.OpNone
		rec.queuePos = 0
		t.sessionCount++
		break
	}
	t.mu.Unlock()

	if n == 0 {
		t.logger.Warn("table_full", zap.String("magic", magic), zap.Int("capacity", t.capacity))
		return 0, ErrTableFull
	}

	t.logger.Info("session_initialized",
		zap.Int("session", n),
		zap.Int64("account", account),
		zap.String("symbol1", symbol),
		zap.String("magic", magic),
	)
	t.emit(EventSessionInitialized, n, map[string]any{
		"account": account,
		"handle":  handle,
		"symbol1": symbol,
		"magic":   magic,
	})
	return n, nil
}

// InitializeLeg attaches symbol as leg 2 or 3 of every occupied slot tagged
// with magic and returns the last slot it touched.
func (t *Table) InitializeLeg(leg int, symbol, magic string) (int, error) {
	if leg != 2 && leg != 3 {
		return 0, ErrInvalidLeg
	}
	if magic == "" {
		return 0, ErrMissingMagic
	}

	t.mu.Lock()
	n := 0
	for i := range t.records {
		s := &t.records[i].session
		if s.Free() || s.Magic != magic {
			continue
		}
		if leg == 2 {
			s.Symbol2 = symbol
		} else {
			s.Symbol3 = symbol
		}
		n = i + 1
	}
	t.mu.Unlock()

	if n == 0 {
		return 0, ErrSessionNotFound
	}
	t.logger.Debug("session_leg_attached", zap.Int("session", n), zap.Int("leg", leg), zap.String("symbol", symbol))
	return n, nil
}

// Deinitialize releases slot n. The session counter is decremented only while
// it is positive.
func (t *Table) Deinitialize(n int) error {
	t.mu.Lock()
	rec, err := t.lookup(n)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	rec.session = model.Session{Symbol: releasedSymbol}
	rec.trade.Cmd = model.OpUnknown
	rec.queuePos = 0
	if t.sessionCount > 0 {
		t.sessionCount--
	}
	count := t.sessionCount
	t.mu.Unlock()

	t.logger.Info("session_released", zap.Int("session", n), zap.Int("session_count", count))
	t.emit(EventSessionReleased, n, nil)
	return nil
}

// Session returns the identity of slot n.
func (t *Table) Session(n int) (model.Session, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, err := t.lookup(n)
	if err != nil {
		return model.Session{}, err
	}
	return rec.session, nil
}

// Sessions returns the identity of every slot, free ones included.
func (t *Table) Sessions() []model.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Session, len(t.records))
	for i := range t.records {
		out[i] = t.records[i].session
	}
	return out
}

// SetOrderStatus stores a free-text status for slot n.
func (t *Table) SetOrderStatus(n int, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.lookup(n)
	if err != nil {
		return err
	}
	rec.session.OrderStatus = status
	return nil
}
