package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func (s *Server) registerQuoteRoutes() {
	s.handle("PUT /SetBidAsk/{args}", s.handleSetBidAsk)
	s.handle("PUT /SetBid/{args}", s.handleSetPrice(s.table.SetBid))
	s.handle("PUT /SetAsk/{args}", s.handleSetPrice(s.table.SetAsk))
	s.handle("PUT /SetBidCurrencyOne/{args}", s.handleSetLegBid(1))
	s.handle("PUT /SetBidCurrencyTwo/{args}", s.handleSetLegBid(2))
	s.handle("PUT /SetBidCurrencyThree/{args}", s.handleSetLegBid(3))

	s.handle("GET /GetBid/{args}", s.quoteField(func(q model.Quote) any { return q.Bid }))
	s.handle("GET /GetAsk/{args}", s.quoteField(func(q model.Quote) any { return q.Ask }))
	s.handle("GET /GetClose/{args}", s.quoteField(func(q model.Quote) any { return q.Close }))
	s.handle("GET /GetVolume/{args}", s.quoteField(func(q model.Quote) any { return q.Volume }))
}

func (s *Server) handleSetBidAsk(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "bid", "ask", "close", "volume")
	n := a.Int("session")
	q := model.Quote{
		Bid:    a.Float("bid"),
		Ask:    a.Float("ask"),
		Close:  a.Float("close"),
		Volume: a.Float("volume"),
	}
	s.respond(w, r, a, sentinelError, func() (any, error) {
		return ok(s.table.SetBidAsk(n, q))
	})
}

// handleSetPrice answers the session number, which is what terminals expect
// back from the single-price setters.
func (s *Server) handleSetPrice(set func(int, float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := pathArgs(r, "session", "quote")
		n, price := a.Int("session"), a.Float("quote")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			if err := set(n, price); err != nil {
				return nil, err
			}
			return n, nil
		})
	}
}

func (s *Server) handleSetLegBid(leg int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := pathArgs(r, "session", "currency", "quote")
		n, currency, bid := a.Int("session"), a.String("currency"), a.Float("quote")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			if err := s.table.SetLegBid(n, leg, currency, bid); err != nil {
				return nil, err
			}
			return n, nil
		})
	}
}

func (s *Server) quoteField(pick func(model.Quote) any) http.HandlerFunc {
	return s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		q, err := s.table.Quote(n)
		if err != nil {
			return nil, err
		}
		return pick(q), nil
	})
}
