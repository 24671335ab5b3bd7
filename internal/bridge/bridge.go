// Package bridge holds the session table shared between the HTTP layer and
// the MT4/MT5 terminals that poll it.
//
// A Table is a fixed-capacity array of session slots. Slots are addressed by
// a 1-based session number and every per-session operation is validated
// against the table capacity and the live session count before it touches a
// slot. All methods are safe for concurrent use.
package bridge

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

const (
	DefaultMaxSessions  = 50
	DefaultTickCapacity = 100

	// HistoryCapacity is the number of candles kept per ring.
	HistoryCapacity = 100

	// LegCount is the number of auxiliary currencies a session can carry.
	LegCount = 3
)

// record is the aggregate of every sub-record owned by one slot.
type record struct {
	session    model.Session
	account    model.AccountInfo
	pair       model.CurrencyPairInfo
	market     model.MarketInfo
	margin     model.MarginInfo
	trade      model.TradeCommand
	response   model.Response
	quote      model.Quote
	legQuotes  [LegCount]model.LegQuote
	swaps      model.SwapRates
	currencies []string
	queuePos   int

	// history[0] is the primary symbol, history[1..3] the legs.
	history [LegCount + 1]Ring
}

// Table is the in-memory session table.
type Table struct {
	mu           sync.RWMutex
	capacity     int
	sessionCount int
	records      []record
	ticks        []model.Tick
	tickCapacity int
	keepReadFlag bool
	observer     Observer
	logger       *zap.Logger
	now          func() time.Time
	startedAt    time.Time
	resetAt      time.Time
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver registers a callback that receives every mutation event.
func WithObserver(o Observer) Option {
	return func(t *Table) {
		t.observer = o
	}
}

// WithTickCapacity sizes the tick pool.
func WithTickCapacity(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.tickCapacity = n
		}
	}
}

// WithKeepReadFlag makes SendResponse leave the mailbox read flag untouched,
// so a message sent after a read is reported as "NONE".
func WithKeepReadFlag(keep bool) Option {
	return func(t *Table) {
		t.keepReadFlag = keep
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a table with the given number of session slots.
// A non-positive capacity falls back to DefaultMaxSessions.
func New(capacity int, opts ...Option) *Table {
	if capacity <= 0 {
		capacity = DefaultMaxSessions
	}
	t := &Table{
		capacity:     capacity,
		tickCapacity: DefaultTickCapacity,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startedAt = t.now()
	t.reset()
	return t
}

// Reset reinitializes every slot, sub-record and tick to the startup state.
func (t *Table) Reset() Snapshot {
	t.mu.Lock()
	t.reset()
	snap := t.snapshot()
	t.mu.Unlock()

	t.logger.Info("table_reset", zap.Int("capacity", t.capacity))
	t.emit(EventTableReset, 0, nil)
	return snap
}

func (t *Table) reset() {
	t.records = make([]record, t.capacity)
	t.ticks = make([]model.Tick, t.tickCapacity)
	t.sessionCount = 0
	t.resetAt = t.now()
}

// Capacity returns the number of session slots.
func (t *Table) Capacity() int {
	return t.capacity
}

// TickCapacity returns the size of the tick pool.
func (t *Table) TickCapacity() int {
	return t.tickCapacity
}

// SessionCount returns the live session counter used by the bounds check.
func (t *Table) SessionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionCount
}

// Occupied counts the slots that are currently allocated. It can differ from
// SessionCount; it is reported for diagnostics only.
func (t *Table) Occupied() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.occupied()
}

func (t *Table) occupied() int {
	n := 0
	for i := range t.records {
		if !t.records[i].session.Free() {
			n++
		}
	}
	return n
}
