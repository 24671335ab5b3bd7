package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/auth"
	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/model"
	"github.com/pingleware/metratrader-bridge/internal/version"
)

func (s *Server) registerSessionRoutes() {
	s.handle("GET /{$}", s.handleIndex)
	s.handle("GET /about", s.handleAbout)
	s.handle("GET /md5/{password}", s.handleMD5)
	s.handle("GET /GetDllVersion", s.handleDllVersion)

	s.handle("GET /ResetAll", s.handleResetAll)
	s.handle("GET /GetMaximumSessions", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, s.table.Capacity())
	})
	s.handle("GET /GetSessionCount", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, s.table.SessionCount())
	})
	s.handle("GET /FindExistingSession/{args}", s.handleFindExisting)
	s.handle("PUT /Initialize/{args}", s.handleInitialize)
	s.handle("PUT /InitializeCurrency1/{args}", s.handleInitializeCurrency1)
	s.handle("PUT /InitializeCurrency2/{args}", s.handleInitializeLeg(2))
	s.handle("PUT /InitializeCurrency3/{args}", s.handleInitializeLeg(3))
	s.handle("DELETE /DeInitialize/{args}", s.handleDeinitialize)

	s.handle("GET /GetSession/{args}", s.handleGetSession)
	s.handle("GET /GetAllSessions", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, s.table.Sessions())
	})
	s.handle("GET /GetAllAccounts", s.snapshotRoute(func(sn bridge.Snapshot) any { return sn.Accounts }))
	s.handle("GET /GetAllCurrencyPairs", s.snapshotRoute(func(sn bridge.Snapshot) any { return sn.CurrencyPairs }))
	s.handle("GET /GetAllMarketInfo", s.snapshotRoute(func(sn bridge.Snapshot) any { return sn.MarketInfo }))
	s.handle("GET /GetAllMarginInfo", s.snapshotRoute(func(sn bridge.Snapshot) any { return sn.MarginInfo }))
	s.handle("GET /GetAllResponses", s.snapshotRoute(func(sn bridge.Snapshot) any { return sn.Responses }))
	s.handle("GET /GetAllTradeCommands", s.snapshotRoute(func(sn bridge.Snapshot) any { return sn.TradeCommands }))
	s.handle("GET /GetAllPrices", s.snapshotRoute(func(sn bridge.Snapshot) any { return pricesDoc(sn.Prices) }))
	s.handle("GET /GetAllHistory", s.allHistoryRoute(bridge.PairPrimary))
	s.handle("GET /GetAllCurrency1History", s.allHistoryRoute(bridge.PairLeg1))
	s.handle("GET /GetAllCurrency2History", s.allHistoryRoute(bridge.PairLeg2))
	s.handle("GET /GetAllCurrency3History", s.allHistoryRoute(bridge.PairLeg3))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	routes := slices.Clone(s.routes)
	slices.Sort(routes)
	out := make([]string, 0, len(routes))
	for _, p := range routes {
		method, path, _ := strings.Cut(p, " ")
		out = append(out, strings.ToLower(method)+" -> "+path)
	}
	writeValue(w, out)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	writeValue(w, version.Get())
}

func (s *Server) handleDllVersion(w http.ResponseWriter, r *http.Request) {
	writeValue(w, version.DllVersion(time.Now()))
}

func (s *Server) handleMD5(w http.ResponseWriter, r *http.Request) {
	writeValue(w, auth.MD5Hex(r.PathValue("password")))
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("api_reset_all", zap.String("request_id", requestID(r.Context())))
	writeValue(w, s.table.Reset())
}

// handleFindExisting takes acctnum,symbol,handle in that order.
func (s *Server) handleFindExisting(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "acctnum", "symbol", "handle")
	acct, symbol, handle := a.Int64("acctnum"), a.String("symbol"), a.Int64("handle")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		return s.table.FindExisting(acct, handle, symbol)
	})
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "acctnum", "handle", "symbol", "symbol1", "symbol2", "symbol3")
	acct, handle := a.Int64("acctnum"), a.Int64("handle")
	sym, s1, s2, s3 := a.String("symbol"), a.String("symbol1"), a.String("symbol2"), a.String("symbol3")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		return s.table.Initialize(acct, handle, sym, s1, s2, s3)
	})
}

// legArgs accepts both acct,handle,symbol,magic and acct,handle,symbol.magic.
func legArgs(r *http.Request) *args {
	raw := r.PathValue("args")
	if strings.Count(raw, ",") == 2 {
		if i := strings.LastIndexByte(raw, '.'); i > strings.LastIndexByte(raw, ',') {
			r.SetPathValue("args", raw[:i]+","+raw[i+1:])
		}
	}
	return pathArgs(r, "acctnum", "handle", "symbol", "magic")
}

func (s *Server) handleInitializeCurrency1(w http.ResponseWriter, r *http.Request) {
	a := legArgs(r)
	acct, handle, symbol, magic := a.Int64("acctnum"), a.Int64("handle"), a.String("symbol"), a.String("magic")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		return s.table.InitializeLeg1(acct, handle, symbol, magic)
	})
}

func (s *Server) handleInitializeLeg(leg int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := legArgs(r)
		symbol, magic := a.String("symbol"), a.String("magic")
		a.Int64("acctnum")
		a.Int64("handle")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			return s.table.InitializeLeg(leg, symbol, magic)
		})
	}
}

func (s *Server) handleDeinitialize(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "index")
	n := a.Int("index")
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.Deinitialize(n))
	})
}

// handleGetSession answers a blank session when the number is rejected.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "index")
	n := a.Int("index")
	s.respond(w, r, a, model.Session{}, func() (any, error) {
		return s.table.Session(n)
	})
}

func (s *Server) snapshotRoute(pick func(bridge.Snapshot) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, pick(s.table.Snapshot()))
	}
}

func (s *Server) allHistoryRoute(pair int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.table.AllHistory(pair)
		if err != nil {
			writeValue(w, sentinelNumber)
			return
		}
		writeValue(w, all)
	}
}

type prices struct {
	Bid    []float64 `json:"bid"`
	Ask    []float64 `json:"ask"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

func pricesDoc(quotes []model.Quote) prices {
	p := prices{
		Bid:    make([]float64, len(quotes)),
		Ask:    make([]float64, len(quotes)),
		Close:  make([]float64, len(quotes)),
		Volume: make([]float64, len(quotes)),
	}
	for i, q := range quotes {
		p.Bid[i], p.Ask[i], p.Close[i], p.Volume[i] = q.Bid, q.Ask, q.Close, q.Volume
	}
	return p
}
