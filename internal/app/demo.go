package app

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/config"
	"github.com/pingleware/metratrader-bridge/internal/model"
)

// candleSteps is how many quote updates make one demo candle.
const candleSteps = 10

// demoFeed stands in for a terminal: it owns one session and keeps its
// quotes, tick and primary history moving.
type demoFeed struct {
	table   *bridge.Table
	log     *zap.Logger
	rng     *rand.Rand
	session int
	symbol  string
	bid     float64
	spread  float64
	digits  int
	candles []model.RateInfo
	open    model.RateInfo
	step    int
}

func startDemo(lc fx.Lifecycle, cfg *config.Config, table *bridge.Table, log *zap.Logger) error {
	if !cfg.Demo.Enabled {
		return nil
	}
	feed, err := seedDemo(table, cfg.Demo, log.Named("demo"), time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go feed.run(ctx, cfg.Demo.TickInterval())
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return nil
}

// seedDemo opens a session the way a terminal does on attach: identity,
// account, market and margin info, then a full history ring.
func seedDemo(table *bridge.Table, cfg config.DemoConfig, log *zap.Logger, now time.Time) (*demoFeed, error) {
	n, err := table.Initialize(cfg.Account, cfg.Handle, cfg.Symbol, "", "", "")
	if err != nil {
		return nil, err
	}

	f := &demoFeed{
		table:   table,
		log:     log,
		rng:     rand.New(rand.NewSource(now.UnixNano())),
		session: n,
		symbol:  cfg.Symbol,
		bid:     1.08342,
		spread:  0.00012,
		digits:  5,
	}

	if err := table.SaveAccountInfo(n, model.AccountInfo{
		Number:   cfg.Account,
		Balance:  10000.00,
		Equity:   9847.35,
		Leverage: 100,
	}); err != nil {
		return nil, err
	}
	if err := table.SaveCurrencySessionInfo(n, cfg.Symbol, cfg.Handle, 1, cfg.Account); err != nil {
		return nil, err
	}
	if err := table.SaveMarketInfo(n, model.MarketInfo{
		Number:    cfg.Account,
		Leverage:  100,
		Symbol:    cfg.Symbol,
		Points:    0.00001,
		Digits:    f.digits,
		Spread:    12,
		StopLevel: 0,
	}); err != nil {
		return nil, err
	}
	if err := table.SaveMarginInfo(n, model.MarginInfo{
		Symbol:            cfg.Symbol,
		Handle:            cfg.Handle,
		MarginInit:        100000,
		MarginMaintenance: 50000,
		MarginHedged:      50000,
		MarginRequired:    1083.42,
	}); err != nil {
		return nil, err
	}

	start := now.Add(-time.Duration(bridge.HistoryCapacity) * time.Minute).Truncate(time.Minute)
	f.candles = make([]model.RateInfo, 0, bridge.HistoryCapacity)
	for i := 0; i < bridge.HistoryCapacity; i++ {
		f.candles = append(f.candles, f.candle(start.Add(time.Duration(i)*time.Minute).Unix()))
	}
	if err := table.SaveHistory(n, bridge.PairPrimary, f.candles, len(f.candles)); err != nil {
		return nil, err
	}
	if err := f.quote(now); err != nil {
		return nil, err
	}

	log.Info("demo_seed_complete",
		zap.Int("session", n),
		zap.Int64("account", cfg.Account),
		zap.String("symbol", cfg.Symbol),
		zap.Int("candles", len(f.candles)),
	)
	return f, nil
}

// candle walks the price through one synthetic minute.
func (f *demoFeed) candle(ts int64) model.RateInfo {
	open := f.bid
	hi, lo := open, open
	for j := 0; j < 4; j++ {
		f.walk()
		hi = math.Max(hi, f.bid)
		lo = math.Min(lo, f.bid)
	}
	return model.RateInfo{
		Time:   ts,
		Open:   f.round(open),
		High:   f.round(hi),
		Low:    f.round(lo),
		Close:  f.round(f.bid),
		Volume: float64(50 + f.rng.Intn(150)),
	}
}

func (f *demoFeed) walk() {
	delta := (f.rng.Float64() - 0.5) * f.spread * 3
	wave := math.Sin(float64(f.step)/20.0) * f.spread * 0.5
	f.bid += delta + wave
}

func (f *demoFeed) round(v float64) float64 {
	pow := math.Pow(10, float64(f.digits))
	return math.Round(v*pow) / pow
}

func (f *demoFeed) quote(now time.Time) error {
	bid, ask := f.round(f.bid), f.round(f.bid+f.spread)
	last := f.candles[len(f.candles)-1]
	if err := f.table.SetBidAsk(f.session, model.Quote{Bid: bid, Ask: ask, Close: last.Close, Volume: last.Volume}); err != nil {
		return err
	}
	return f.table.SaveTick(f.session, model.Tick{
		Symbol:   f.symbol,
		TickDate: now.Format("2006.01.02 15:04:05"),
		Bid:      bid,
		Ask:      ask,
	})
}

// advance moves the price one step and rolls a new candle into the ring
// every candleSteps steps.
func (f *demoFeed) advance(now time.Time) error {
	f.step++
	if f.step%candleSteps == 1 {
		f.open = model.RateInfo{Time: now.Unix(), Open: f.round(f.bid), High: f.bid, Low: f.bid}
	}
	f.walk()
	f.open.High = math.Max(f.open.High, f.bid)
	f.open.Low = math.Min(f.open.Low, f.bid)
	f.open.Volume += float64(1 + f.rng.Intn(10))

	if f.step%candleSteps == 0 {
		c := f.open
		c.High, c.Low, c.Close = f.round(c.High), f.round(c.Low), f.round(f.bid)
		f.candles = append(f.candles[1:], c)
		if err := f.table.SaveHistory(f.session, bridge.PairPrimary, f.candles, len(f.candles)); err != nil {
			return err
		}
	}
	return f.quote(now)
}

func (f *demoFeed) run(ctx context.Context, interval time.Duration) {
	f.log.Info("starting demo quote simulator", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := f.advance(now); err != nil {
				// the session was released or the table reset
				f.log.Warn("demo_feed_stopped", zap.Int("session", f.session), zap.Error(err))
				return
			}
		}
	}
}
