package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func (s *Server) registerAccountRoutes() {
	s.handle("PUT /SaveAccountInfo/{args}", s.handleSaveAccountInfo)
	s.handle("GET /GetAccountInfo/{args}", s.sessionGetter(sentinelError, func(n int) (any, error) {
		return s.table.AccountInfo(n)
	}))
	s.handle("GET /GetAccountNumber/{args}", s.accountField(func(a model.AccountInfo) any { return a.Number }))
	s.handle("GET /GetAccountBalance/{args}", s.accountField(func(a model.AccountInfo) any { return a.Balance }))
	s.handle("GET /GetAccountEquity/{args}", s.accountField(func(a model.AccountInfo) any { return a.Equity }))
	s.handle("GET /GetAccountLeverage/{args}", s.accountField(func(a model.AccountInfo) any { return a.Leverage }))
}

func (s *Server) handleSaveAccountInfo(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "number", "balance", "equity", "leverage")
	n := a.Int("session")
	info := model.AccountInfo{
		Number:   a.Int64("number"),
		Balance:  a.Float("balance"),
		Equity:   a.Float("equity"),
		Leverage: a.Int("leverage"),
	}
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SaveAccountInfo(n, info))
	})
}

func (s *Server) accountField(pick func(model.AccountInfo) any) http.HandlerFunc {
	return s.sessionGetter(sentinelError, func(n int) (any, error) {
		info, err := s.table.AccountInfo(n)
		if err != nil {
			return nil, err
		}
		return pick(info), nil
	})
}
