package bridge

import (
	"time"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// Snapshot is a point-in-time copy of every per-slot array.
type Snapshot struct {
	SessionCount  int                      `json:"session_count"`
	Sessions      []model.Session          `json:"sessions"`
	Accounts      []model.AccountInfo      `json:"accounts"`
	CurrencyPairs []model.CurrencyPairInfo `json:"currency_pairs"`
	MarketInfo    []model.MarketInfo       `json:"market_info"`
	MarginInfo    []model.MarginInfo       `json:"margin_info"`
	Responses     []model.Response         `json:"responses"`
	TradeCommands []model.TradeCommand     `json:"trade_commands"`
	Prices        []model.Quote            `json:"prices"`
	Ticks         []model.Tick             `json:"ticks"`
}

// Snapshot copies the table.
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot()
}

func (t *Table) snapshot() Snapshot {
	size := len(t.records)
	s := Snapshot{
		SessionCount:  t.sessionCount,
		Sessions:      make([]model.Session, size),
		Accounts:      make([]model.AccountInfo, size),
		CurrencyPairs: make([]model.CurrencyPairInfo, size),
		MarketInfo:    make([]model.MarketInfo, size),
		MarginInfo:    make([]model.MarginInfo, size),
		Responses:     make([]model.Response, size),
		TradeCommands: make([]model.TradeCommand, size),
		Prices:        make([]model.Quote, size),
		Ticks:         append([]model.Tick(nil), t.ticks...),
	}
	for i := range t.records {
		r := &t.records[i]
		s.Sessions[i] = r.session
		s.Accounts[i] = r.account
		s.CurrencyPairs[i] = r.pair
		s.MarketInfo[i] = r.market
		s.MarginInfo[i] = r.margin
		s.Responses[i] = r.response
		s.TradeCommands[i] = r.trade
		s.Prices[i] = r.quote
	}
	return s
}

// Status summarizes the table for the operational endpoints.
type Status struct {
	Capacity     int       `json:"capacity"`
	TickCapacity int       `json:"tick_capacity"`
	SessionCount int       `json:"session_count"`
	Occupied     int       `json:"occupied"`
	StartedAt    time.Time `json:"started_at"`
	ResetAt      time.Time `json:"reset_at"`
	Uptime       string    `json:"uptime"`
}

func (t *Table) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Status{
		Capacity:     t.capacity,
		TickCapacity: t.tickCapacity,
		SessionCount: t.sessionCount,
		Occupied:     t.occupied(),
		StartedAt:    t.startedAt,
		ResetAt:      t.resetAt,
		Uptime:       t.now().Sub(t.startedAt).Truncate(time.Second).String(),
	}
}
