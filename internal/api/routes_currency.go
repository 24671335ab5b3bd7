package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func (s *Server) registerCurrencyRoutes() {
	s.handle("PUT /SaveCurrencySessionInfo/{args}", s.handleSaveCurrencySessionInfo)
	s.handle("GET /GetSessionCurrency/{args}", s.sessionField(func(ss model.Session) any { return ss.Symbol }))
	s.handle("GET /GetSessionCurrency1/{args}", s.sessionField(func(ss model.Session) any { return ss.Symbol1 }))
	s.handle("GET /GetSessionCurrency2/{args}", s.sessionField(func(ss model.Session) any { return ss.Symbol2 }))
	s.handle("GET /GetSessionCurrency3/{args}", s.sessionField(func(ss model.Session) any { return ss.Symbol3 }))
	s.handle("GET /GetSessionHandle/{args}", s.sessionField(func(ss model.Session) any { return ss.Handle }))
	s.handle("GET /GetSessionPeriod/{args}", s.sessionGetter(sentinelSession, func(n int) (any, error) {
		p, err := s.table.CurrencyPair(n)
		if err != nil {
			return nil, err
		}
		return p.Period, nil
	}))

	s.handle("DELETE /DecrementQueuePosition/{args}", s.sessionGetter(sentinelError, func(n int) (any, error) {
		_, err := s.table.DecrementQueuePosition(n)
		return ok(err)
	}))
	s.handle("GET /GetAllCurrencies/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		return s.table.AllCurrencies(n)
	}))
	s.handle("POST /SaveAllCurrencies", s.handleSaveAllCurrencies)
}

func (s *Server) handleSaveCurrencySessionInfo(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "symbol", "handle", "period", "number")
	n, symbol := a.Int("session"), a.String("symbol")
	handle, period, number := a.Int64("handle"), a.Int("period"), a.Int64("number")
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SaveCurrencySessionInfo(n, symbol, handle, period, number))
	})
}

func (s *Server) handleSaveAllCurrencies(w http.ResponseWriter, r *http.Request) {
	a := bodyArgs(r)
	n, symbols := a.Int("session"), a.Strings("symbols")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		if err := s.table.SaveAllCurrencies(n, symbols); err != nil {
			return nil, err
		}
		return sentinelSaveSuccess, nil
	})
}

func (s *Server) sessionField(pick func(model.Session) any) http.HandlerFunc {
	return s.sessionGetter(sentinelSession, func(n int) (any, error) {
		ss, err := s.table.Session(n)
		if err != nil {
			return nil, err
		}
		return pick(ss), nil
	})
}
