package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func (s *Server) registerTradeRoutes() {
	s.handle("GET /SendTradeCommands/{args}", s.handleSendTradeCommands)
	s.handle("POST /SendTradeCommands", s.handleSendTradeCommandsBody)
	s.handle("GET /SendTradeCommands2/{args}", s.handleSendTradeCommands2)
	s.handle("POST /SendTradeCommands2", s.handleSendTradeCommands2Body)
	s.handle("DELETE /ResetTradeCommand/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		return ok(s.table.ResetTradeCommand(n))
	}))

	s.handle("GET /GetTradeOpCommands/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		return s.table.TradeCommand(n)
	}))
	s.handle("GET /GetTradeOpCommand/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Cmd }))
	s.handle("GET /GetTradeOpCommand1/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Cmd1 }))
	s.handle("GET /GetTradeOpCommand2/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Cmd2 }))
	s.handle("GET /GetTradeOpCommand3/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Cmd3 }))
	s.handle("GET /GetTradePrice/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Price }))
	s.handle("GET /GetTradeLots/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Lots }))
	s.handle("GET /GetTradeLots2/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Lots2 }))
	s.handle("GET /GetTradeLots3/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.Lots3 }))
	s.handle("GET /GetTradeStoploss/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.StopLoss }))
	s.handle("GET /GetTradeTakeprofit/{args}", s.tradeField(sentinelNumber, func(c model.TradeCommand) any { return c.TakeProfit }))
	s.handle("GET /GetTradeCurrency/{args}", s.tradeField(sentinelTrade, func(c model.TradeCommand) any { return c.Symbol }))
	s.handle("GET /GetTradeCurrency2/{args}", s.tradeField(sentinelTrade, func(c model.TradeCommand) any { return c.Symbol2 }))
	s.handle("GET /GetTradeCurrency3/{args}", s.tradeField(sentinelTrade, func(c model.TradeCommand) any { return c.Symbol3 }))

	s.handle("GET /SetOrderStatus/{args}", s.handleSetOrderStatus)
	s.handle("PUT /SetOrderStatus", s.handleSetOrderStatusBody)
	s.handle("GET /GetOrderStatus/{args}", s.sessionGetter(sentinelError, func(n int) (any, error) {
		ss, err := s.table.Session(n)
		if err != nil {
			return nil, err
		}
		return ss.OrderStatus, nil
	}))

	s.handle("GET /SetSwapRateLong/{args}", s.handleSetSwap(s.table.SetSwapRateLong))
	s.handle("GET /SetSwapRateShort/{args}", s.handleSetSwap(s.table.SetSwapRateShort))
	s.handle("GET /GetSwapRateLong/{args}", s.swapField(func(r model.SwapRates) any { return r.Long }))
	s.handle("GET /GetSwapRateShort/{args}", s.swapField(func(r model.SwapRates) any { return r.Short }))
	s.handle("GET /PipSize/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		return s.table.PipSize(n)
	}))
}

func (s *Server) handleSendTradeCommands(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "cmd", "symbol", "lots", "price", "stoploss", "profit")
	s.sendTradeCommand(w, r, a)
}

func (s *Server) handleSendTradeCommandsBody(w http.ResponseWriter, r *http.Request) {
	s.sendTradeCommand(w, r, bodyArgs(r))
}

func (s *Server) sendTradeCommand(w http.ResponseWriter, r *http.Request, a *args) {
	n := a.Int("session")
	o := model.TradeOrder{
		Cmd:        model.OpCommand(a.Int("cmd")),
		Symbol:     a.String("symbol"),
		Lots:       a.Float("lots"),
		Price:      a.Float("price"),
		StopLoss:   a.Float("stoploss"),
		TakeProfit: a.Float("profit"),
		Comment:    a.OptionalString("comment", ""),
	}
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SendTradeCommand(n, o))
	})
}

func (s *Server) handleSendTradeCommands2(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "cmd", "symbol1", "lots", "cmd2", "symbol2", "lots2", "cmd3", "symbol3", "lots3")
	s.sendTradeCommands2(w, r, a)
}

func (s *Server) handleSendTradeCommands2Body(w http.ResponseWriter, r *http.Request) {
	s.sendTradeCommands2(w, r, bodyArgs(r))
}

func (s *Server) sendTradeCommands2(w http.ResponseWriter, r *http.Request, a *args) {
	n := a.Int("session")
	o := model.MultiLegOrder{
		Cmd1:    model.OpCommand(a.Int("cmd")),
		Symbol1: a.String("symbol1"),
		Lots1:   a.Float("lots"),
		Cmd2:    model.OpCommand(a.Int("cmd2")),
		Symbol2: a.String("symbol2"),
		Lots2:   a.Float("lots2"),
		Cmd3:    model.OpCommand(a.Int("cmd3")),
		Symbol3: a.String("symbol3"),
		Lots3:   a.Float("lots3"),
	}
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SendTradeCommands2(n, o))
	})
}

func (s *Server) handleSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	s.setOrderStatus(w, r, pathArgs(r, "session", "status"))
}

func (s *Server) handleSetOrderStatusBody(w http.ResponseWriter, r *http.Request) {
	s.setOrderStatus(w, r, bodyArgs(r))
}

func (s *Server) setOrderStatus(w http.ResponseWriter, r *http.Request, a *args) {
	n, status := a.Int("session"), a.String("status")
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SetOrderStatus(n, status))
	})
}

func (s *Server) handleSetSwap(set func(int, float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := pathArgs(r, "session", "rate")
		n, rate := a.Int("session"), a.Float("rate")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			return ok(set(n, rate))
		})
	}
}

func (s *Server) tradeField(sentinel any, pick func(model.TradeCommand) any) http.HandlerFunc {
	return s.sessionGetter(sentinel, func(n int) (any, error) {
		c, err := s.table.TradeCommand(n)
		if err != nil {
			return nil, err
		}
		return pick(c), nil
	})
}

func (s *Server) swapField(pick func(model.SwapRates) any) http.HandlerFunc {
	return s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		rates, err := s.table.SwapRates(n)
		if err != nil {
			return nil, err
		}
		return pick(rates), nil
	})
}
