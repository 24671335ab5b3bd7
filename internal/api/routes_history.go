package api

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/model"
)

type rateField func(model.RateInfo) any

var rateFields = map[string]rateField{
	"Open":   func(e model.RateInfo) any { return e.Open },
	"High":   func(e model.RateInfo) any { return e.High },
	"Low":    func(e model.RateInfo) any { return e.Low },
	"Close":  func(e model.RateInfo) any { return e.Close },
	"Volume": func(e model.RateInfo) any { return e.Volume },
	"Time":   func(e model.RateInfo) any { return e.Time },
}

func (s *Server) registerHistoryRoutes() {
	s.handle("PUT /SaveSingleHistory/{args}", s.handleSaveSingleHistory)
	s.handle("PUT /SaveHistory/{args}", s.handleSaveHistoryEntry)
	s.handle("POST /SaveHistory", s.handleSaveHistory(bridge.PairPrimary))
	s.handle("POST /SaveHistoryCcy1", s.handleSaveHistory(bridge.PairLeg1))
	s.handle("POST /SaveHistoryCcy2", s.handleSaveHistory(bridge.PairLeg2))
	s.handle("POST /SaveHistoryCcy3", s.handleSaveHistory(bridge.PairLeg3))

	s.handle("PUT /SaveTick/{args}", s.handleSaveTick)
	s.handle("GET /GetTick/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		return s.table.Tick(n)
	}))

	s.handle("GET /RetrieveHistoryBufferSize/{args}", s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		return s.table.HistoryBufferSize(n)
	}))
	s.handle("GET /RetrieveHistorical/{args}", s.handleRetrieveHistorical)
	for name, pick := range rateFields {
		s.handle("GET /RetrieveHistorical"+name+"/{args}", s.historyField(pick))
		s.handle("GET /RetrieveHistorical"+name+"2/{args}", s.legHistoryField(pick))
	}
}

// handleSaveSingleHistory takes the candle as time,open,close,high,low,volume
// and echoes the stored candle back.
func (s *Server) handleSaveSingleHistory(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "index", "time", "open", "close", "high", "low", "volume")
	n, index := a.Int("session"), a.Int("index")
	e := model.RateInfo{
		Time:   a.Int64("time"),
		Open:   a.Float("open"),
		Close:  a.Float("close"),
		High:   a.Float("high"),
		Low:    a.Float("low"),
		Volume: a.Float("volume"),
	}
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		if err := s.table.SaveHistoryEntry(n, bridge.PairPrimary, index, e); err != nil {
			return nil, err
		}
		return e, nil
	})
}

// handleSaveHistoryEntry is the PUT form, ordered time,open,high,low,close,volume.
func (s *Server) handleSaveHistoryEntry(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "index", "time", "open", "high", "low", "close", "volume")
	n, index := a.Int("session"), a.Int("index")
	e := model.RateInfo{
		Time:   a.Int64("time"),
		Open:   a.Float("open"),
		High:   a.Float("high"),
		Low:    a.Float("low"),
		Close:  a.Float("close"),
		Volume: a.Float("volume"),
	}
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		return ok(s.table.SaveHistoryEntry(n, bridge.PairPrimary, index, e))
	})
}

// handleSaveHistory replaces a whole ring from a body carrying session,
// symbol, rates and rates_total. The payload is decoded completely before
// the table is touched.
func (s *Server) handleSaveHistory(pair int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := bodyArgs(r)
		n := a.Int("session")
		raw := a.String("rates")

		var entries []model.RateInfo
		if a.Err() == nil {
			var err error
			if entries, err = decodeRates(raw); err != nil {
				s.badRequest(w, r, err)
				return
			}
		}
		total := len(entries)
		if _, present := a.vals["rates_total"]; present {
			total = a.Int("rates_total")
		}
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			return ok(s.table.SaveHistory(n, pair, entries, total))
		})
	}
}

// decodeRates accepts either a JSON array of candles or an object keyed by
// position ("0", "1", ...). Missing positions are left zero.
func decodeRates(raw string) ([]model.RateInfo, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var list []model.RatePayload
		if err := sonic.UnmarshalString(raw, &list); err != nil {
			return nil, errors.Wrap(err, "decoding rates")
		}
		out := make([]model.RateInfo, len(list))
		for i, p := range list {
			e, err := p.RateInfo()
			if err != nil {
				return nil, errors.Wrapf(err, "decoding rates: position %d", i)
			}
			out[i] = e
		}
		return out, nil
	}

	var keyed map[string]model.RatePayload
	if err := sonic.UnmarshalString(raw, &keyed); err != nil {
		return nil, errors.Wrap(err, "decoding rates")
	}
	idx := make([]int, 0, len(keyed))
	byIndex := make(map[int]model.RateInfo, len(keyed))
	for k, p := range keyed {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, errors.Errorf("decoding rates: invalid position %q", k)
		}
		if i >= bridge.HistoryCapacity {
			continue
		}
		e, err := p.RateInfo()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding rates: position %d", i)
		}
		idx = append(idx, i)
		byIndex[i] = e
	}
	if len(idx) == 0 {
		return nil, nil
	}
	sort.Ints(idx)
	out := make([]model.RateInfo, idx[len(idx)-1]+1)
	for _, i := range idx {
		out[i] = byIndex[i]
	}
	return out, nil
}

func (s *Server) handleSaveTick(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session")
	n := a.Int("session")
	if err := a.Err(); err != nil {
		s.badRequest(w, r, err)
		return
	}
	b := bodyArgs(r)
	tick := model.Tick{
		Symbol:     b.String("symbol"),
		TickDate:   b.OptionalString("date", ""),
		Bid:        b.Float("bid"),
		Ask:        b.Float("ask"),
		Equity:     b.OptionalFloat("equity", 0),
		Margin:     b.OptionalFloat("margin", 0),
		FreeMargin: b.OptionalFloat("freemargin", 0),
	}
	s.respond(w, r, b, sentinelNumber, func() (any, error) {
		return ok(s.table.SaveTick(n, tick))
	})
}

// handleRetrieveHistorical serves both the whole ring (session) and a single
// candle (session,index) on the same path.
func (s *Server) handleRetrieveHistorical(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.PathValue("args"), ",") {
		a := pathArgs(r, "session")
		n := a.Int("session")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			return s.table.History(n, bridge.PairPrimary)
		})
		return
	}
	a := pathArgs(r, "session", "index")
	n, index := a.Int("session"), a.Int("index")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		return s.table.HistoryEntry(n, bridge.PairPrimary, index)
	})
}

func (s *Server) historyField(pick rateField) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := pathArgs(r, "session", "index")
		n, index := a.Int("session"), a.Int("index")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			e, err := s.table.HistoryEntry(n, bridge.PairPrimary, index)
			if err != nil {
				return nil, err
			}
			return pick(e), nil
		})
	}
}

// legHistoryField reads leg rings, addressed as pair,session,index with pair
// 1..3. An unknown pair on a valid session answers 0.
func (s *Server) legHistoryField(pick rateField) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := pathArgs(r, "pair", "session", "index")
		pair, n, index := a.Int("pair"), a.Int("session"), a.Int("index")
		s.respond(w, r, a, sentinelNumber, func() (any, error) {
			if pair < bridge.PairLeg1 || pair > bridge.PairLeg3 {
				if _, err := s.table.Session(n); err != nil {
					return nil, err
				}
				return 0, nil
			}
			e, err := s.table.HistoryEntry(n, pair, index)
			if err != nil {
				return nil, err
			}
			return pick(e), nil
		})
	}
}
