package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func initialized(t *testing.T, sessions int) *Table {
	t.Helper()
	tbl := newTestTable(t, DefaultMaxSessions)
	for i := 1; i <= sessions; i++ {
		_, err := tbl.Initialize(int64(1000+i), int64(i), "EURUSD", "", "", "")
		require.NoError(t, err)
	}
	return tbl
}

func TestSubRecordRoundTrip(t *testing.T) {
	tbl := initialized(t, 3)

	for n := 1; n <= 3; n++ {
		acct := model.AccountInfo{Number: int64(n), Balance: 5_000_000, Equity: 4_999_000.5, Leverage: 1000}
		market := model.MarketInfo{Number: int64(n), Leverage: 500, Symbol: "EURUSD", Points: 0.00001, Digits: 5, Spread: 12, StopLevel: 3}
		margin := model.MarginInfo{Symbol: "EURUSD", Handle: 9, MarginInit: 1, MarginMaintenance: 2, MarginHedged: 3, MarginRequired: 4, MarginCalcMode: 1}

		require.NoError(t, tbl.SaveAccountInfo(n, acct))
		require.NoError(t, tbl.SaveMarketInfo(n, market))
		require.NoError(t, tbl.SaveMarginInfo(n, margin))
		require.NoError(t, tbl.SaveCurrencySessionInfo(n, "EURUSD", 132852, 15, 77))

		gotAcct, err := tbl.AccountInfo(n)
		require.NoError(t, err)
		assert.Equal(t, acct, gotAcct)

		gotMarket, err := tbl.MarketInfo(n)
		require.NoError(t, err)
		assert.Equal(t, market, gotMarket)

		gotMargin, err := tbl.MarginInfo(n)
		require.NoError(t, err)
		assert.Equal(t, margin, gotMargin)

		pair, err := tbl.CurrencyPair(n)
		require.NoError(t, err)
		assert.Equal(t, model.CurrencyPairInfo{ID: n, Symbol: "EURUSD", Handle: 132852, Period: 15, Number: 77}, pair)
	}
}

func TestSaveOverwritesWholeRecord(t *testing.T) {
	tbl := initialized(t, 1)
	require.NoError(t, tbl.SaveAccountInfo(1, model.AccountInfo{Number: 1, Balance: 10, Equity: 11, Leverage: 100}))
	require.NoError(t, tbl.SaveAccountInfo(1, model.AccountInfo{Number: 2}))

	got, err := tbl.AccountInfo(1)
	require.NoError(t, err)
	assert.Equal(t, model.AccountInfo{Number: 2}, got)
}

func TestQuotes(t *testing.T) {
	tbl := initialized(t, 1)

	require.NoError(t, tbl.SetBidAsk(1, model.Quote{Bid: 1.1, Ask: 1.2, Close: 1.15, Volume: 300}))
	require.NoError(t, tbl.SetBid(1, 1.11))
	require.NoError(t, tbl.SetAsk(1, 1.21))

	q, err := tbl.Quote(1)
	require.NoError(t, err)
	assert.Equal(t, model.Quote{Bid: 1.11, Ask: 1.21, Close: 1.15, Volume: 300}, q)

	require.NoError(t, tbl.SetLegBid(1, 2, "EURJPY", 160.5))
	lq, err := tbl.LegQuote(1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.LegQuote{Currency: "EURJPY", Bid: 160.5}, lq)

	assert.ErrorIs(t, tbl.SetLegBid(1, 4, "X", 1), ErrInvalidLeg)
	assert.ErrorIs(t, tbl.SetBid(2, 1), ErrOutOfBounds)
}

func TestSwapRatesAndCurrencies(t *testing.T) {
	tbl := initialized(t, 1)

	require.NoError(t, tbl.SetSwapRateLong(1, -2.5))
	require.NoError(t, tbl.SetSwapRateShort(1, 0.75))
	sw, err := tbl.SwapRates(1)
	require.NoError(t, err)
	assert.Equal(t, model.SwapRates{Long: -2.5, Short: 0.75}, sw)

	in := []string{"EURUSD", "USDJPY"}
	require.NoError(t, tbl.SaveAllCurrencies(1, in))
	in[0] = "mutated"
	got, err := tbl.AllCurrencies(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"EURUSD", "USDJPY"}, got)
}

func TestPipSize(t *testing.T) {
	tbl := initialized(t, 2)
	require.NoError(t, tbl.SaveMarketInfo(1, model.MarketInfo{Points: 0.00001, Digits: 5}))
	require.NoError(t, tbl.SaveMarketInfo(2, model.MarketInfo{Points: 0.01, Digits: 2}))

	pip, err := tbl.PipSize(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0001, pip, 1e-12)

	pip, err = tbl.PipSize(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, pip, 1e-12)
}

func TestOrderStatus(t *testing.T) {
	tbl := initialized(t, 1)
	require.NoError(t, tbl.SetOrderStatus(1, "PENDING"))
	s, err := tbl.Session(1)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", s.OrderStatus)
}

func TestTradeCommands(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tbl := newTestTable(t, 5, WithClock(func() time.Time { return now }))
	n, err := tbl.Initialize(1551102, 132852, "EURUSDi", "", "", "")
	require.NoError(t, err)

	require.NoError(t, tbl.SendTradeCommands2(n, model.MultiLegOrder{
		Cmd1: model.OpBuy, Cmd2: model.OpSell, Cmd3: model.OpBuy,
		Symbol1: "EURUSD", Symbol2: "USDJPY", Symbol3: "EURJPY",
		Lots1: 0.1, Lots2: 0.2, Lots3: 0.3,
	}))
	cmd, err := tbl.TradeCommand(n)
	require.NoError(t, err)
	assert.Equal(t, model.OpUnknown, cmd.Cmd, "multi-leg submission leaves the primary alone")
	assert.Equal(t, model.OpSell, cmd.Cmd2)
	assert.Equal(t, 0.3, cmd.Lots3)

	require.NoError(t, tbl.SendTradeCommand(n, model.TradeOrder{
		Cmd: model.OpBuy, Symbol: "EURUSDi", Lots: 1.0, Price: 1.1, StopLoss: 1.0, TakeProfit: 1.2, Comment: "go",
	}))
	cmd, err = tbl.TradeCommand(n)
	require.NoError(t, err)
	assert.Equal(t, model.OpBuy, cmd.Cmd)
	assert.Equal(t, model.OpBuy, cmd.Cmd1, "single-leg submission keeps leg 1")
	assert.Equal(t, model.OpNone, cmd.Cmd2)
	assert.Equal(t, model.OpNone, cmd.Cmd3)
	assert.Equal(t, "EURUSDi", cmd.Symbol)
	assert.Equal(t, 1.0, cmd.Lots)
	assert.Equal(t, "go", cmd.Comment)
	assert.Equal(t, "2024.05.06 07:08:09", cmd.Timestamp)

	require.NoError(t, tbl.ResetTradeCommand(n))
	cmd, err = tbl.TradeCommand(n)
	require.NoError(t, err)
	assert.Equal(t, model.OpNone, cmd.Cmd)
	assert.Equal(t, model.OpNone, cmd.Cmd1)
	assert.Equal(t, "EURUSDi", cmd.Symbol)
	assert.Equal(t, 1.0, cmd.Lots)
}

func TestDecrementQueuePositionHasNoFloor(t *testing.T) {
	tbl := initialized(t, 1)
	for i := 1; i <= 3; i++ {
		pos, err := tbl.DecrementQueuePosition(1)
		require.NoError(t, err)
		assert.Equal(t, -i, pos)
	}
	_, err := tbl.DecrementQueuePosition(2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestResponseMailbox(t *testing.T) {
	tbl := initialized(t, 1)

	require.NoError(t, tbl.SendResponse(1, model.RetOK, 0, "filled", 42))
	msg, err := tbl.ReadResponseMessage(1)
	require.NoError(t, err)
	assert.Equal(t, "filled", msg)

	msg, err = tbl.ReadResponseMessage(1)
	require.NoError(t, err)
	assert.Equal(t, model.ResponseNone, msg)

	resp, err := tbl.Response(1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Ticket)
	assert.Equal(t, model.RetOK, resp.ErrorCode)

	// a new response is readable again
	require.NoError(t, tbl.SendResponse(1, model.RetError, 5, "rejected", 43))
	msg, err = tbl.ReadResponseMessage(1)
	require.NoError(t, err)
	assert.Equal(t, "rejected", msg)

	_, err = tbl.ReadResponseMessage(9)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestResponseMailboxKeepReadFlag(t *testing.T) {
	tbl := newTestTable(t, 5, WithKeepReadFlag(true))
	_, err := tbl.Initialize(1, 1, "EURUSD", "", "", "")
	require.NoError(t, err)

	require.NoError(t, tbl.SendResponse(1, model.RetOK, 0, "filled", 42))
	msg, err := tbl.ReadResponseMessage(1)
	require.NoError(t, err)
	assert.Equal(t, "filled", msg)

	require.NoError(t, tbl.SendResponse(1, model.RetOK, 0, "second", 43))
	msg, err = tbl.ReadResponseMessage(1)
	require.NoError(t, err)
	assert.Equal(t, model.ResponseNone, msg)
}

func TestTickPool(t *testing.T) {
	tbl := newTestTable(t, 10, WithTickCapacity(2))
	for i := int64(1); i <= 3; i++ {
		_, err := tbl.Initialize(i, i, "EURUSD", "", "", "")
		require.NoError(t, err)
	}

	tick := model.Tick{Symbol: "EURUSD", TickDate: "2024.01.01 00:00", Bid: 1.1, Ask: 1.2}
	require.NoError(t, tbl.SaveTick(2, tick))
	got, err := tbl.Tick(2)
	require.NoError(t, err)
	assert.Equal(t, tick, got)

	assert.ErrorIs(t, tbl.SaveTick(3, tick), ErrOutOfBounds)
	_, err = tbl.Tick(4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestEndToEndScenario(t *testing.T) {
	tbl := newTestTable(t, DefaultMaxSessions)

	n, err := tbl.Initialize(1551102, 132852, "EURUSDi", "", "", "")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	acct := model.AccountInfo{Number: 1551102, Balance: 5_000_000, Equity: 5_000_000, Leverage: 1000}
	require.NoError(t, tbl.SaveAccountInfo(n, acct))
	got, err := tbl.AccountInfo(n)
	require.NoError(t, err)
	assert.Equal(t, acct, got)

	require.NoError(t, tbl.SendTradeCommand(n, model.TradeOrder{Cmd: model.OpBuy, Symbol: "EURUSDi", Lots: 1.0}))
	cmd, err := tbl.TradeCommand(n)
	require.NoError(t, err)
	assert.Equal(t, model.OpBuy, cmd.Cmd)
	assert.Equal(t, model.OpNone, cmd.Cmd2)
	assert.Equal(t, model.OpNone, cmd.Cmd3)
}
