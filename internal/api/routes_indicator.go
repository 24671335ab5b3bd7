package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/indicator"
)

// Indicator routes copy the primary ring under the table lock and compute
// on the copy.
func (s *Server) registerIndicatorRoutes() {
	s.handle("GET /MovingAverages/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		series, err := s.table.Series(n, bridge.PairPrimary)
		if err != nil {
			return nil, err
		}
		return indicator.MovingAverages(s.calc, series), nil
	}))
	s.handle("GET /TechnicalIndicators/{args}", s.handleTechnicalIndicators)
}

func (s *Server) handleTechnicalIndicators(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "period")
	n, period := a.Int("session"), a.Int("period")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		series, err := s.table.Series(n, bridge.PairPrimary)
		if err != nil {
			return nil, err
		}
		return indicator.TechnicalIndicators(s.calc, series, period), nil
	})
}
