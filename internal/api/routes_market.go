package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func (s *Server) registerMarketRoutes() {
	s.handle("PUT /SaveMarketInfo/{args}", s.handleSaveMarketInfo)
	s.handle("GET /GetDigits/{args}", s.marketField(func(m model.MarketInfo) any { return m.Digits }))
	s.handle("GET /GetSpread/{args}", s.marketField(func(m model.MarketInfo) any { return m.Spread }))
	s.handle("GET /GetStoplevel/{args}", s.marketField(func(m model.MarketInfo) any { return m.StopLevel }))
	s.handle("GET /GetPoints/{args}", s.marketField(func(m model.MarketInfo) any { return m.Points }))

	s.handle("PUT /SaveMarginInfo/{args}", s.handleSaveMarginInfo)
	s.handle("GET /GetMarginInit/{args}", s.marginField(func(m model.MarginInfo) any { return m.MarginInit }))
	s.handle("GET /GetMarginMaintenance/{args}", s.marginField(func(m model.MarginInfo) any { return m.MarginMaintenance }))
	s.handle("GET /GetMarginHedged/{args}", s.marginField(func(m model.MarginInfo) any { return m.MarginHedged }))
	s.handle("GET /GetMarginRequired/{args}", s.marginField(func(m model.MarginInfo) any { return m.MarginRequired }))
	s.handle("GET /GetMarginCalcMode/{args}", s.marginField(func(m model.MarginInfo) any { return m.MarginCalcMode }))
}

func (s *Server) handleSaveMarketInfo(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "number", "leverage", "symbol", "points", "digits", "spread", "stoplevel")
	n := a.Int("session")
	info := model.MarketInfo{
		Number:    a.Int64("number"),
		Leverage:  a.Int("leverage"),
		Symbol:    a.String("symbol"),
		Points:    a.Float("points"),
		Digits:    a.Int("digits"),
		Spread:    a.Float("spread"),
		StopLevel: a.Float("stoplevel"),
	}
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SaveMarketInfo(n, info))
	})
}

func (s *Server) handleSaveMarginInfo(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "symbol", "handle", "margininit", "marginmaintenance",
		"marginhedged", "marginrequired", "margincalcmode")
	n := a.Int("session")
	info := model.MarginInfo{
		Symbol:            a.String("symbol"),
		Handle:            a.Int64("handle"),
		MarginInit:        a.Float("margininit"),
		MarginMaintenance: a.Float("marginmaintenance"),
		MarginHedged:      a.Float("marginhedged"),
		MarginRequired:    a.Float("marginrequired"),
		MarginCalcMode:    a.Int("margincalcmode"),
	}
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SaveMarginInfo(n, info))
	})
}

func (s *Server) marketField(pick func(model.MarketInfo) any) http.HandlerFunc {
	return s.sessionGetter(sentinelError, func(n int) (any, error) {
		m, err := s.table.MarketInfo(n)
		if err != nil {
			return nil, err
		}
		return pick(m), nil
	})
}

func (s *Server) marginField(pick func(model.MarginInfo) any) http.HandlerFunc {
	return s.sessionGetter(sentinelError, func(n int) (any, error) {
		m, err := s.table.MarginInfo(n)
		if err != nil {
			return nil, err
		}
		return pick(m), nil
	})
}
