package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/indicator"
	"github.com/pingleware/metratrader-bridge/internal/model"
)

type testEnv struct {
	srv   *Server
	table *bridge.Table
	hub   *Hub
	http  *httptest.Server
}

func newTestEnv(t *testing.T, capacity int) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	hub := NewHub(logger)
	table := bridge.New(capacity, bridge.WithLogger(logger), bridge.WithObserver(hub.Observe))
	srv := NewServer(Options{Version: "test"}, table, indicator.NewTALib(logger), hub, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &testEnv{srv: srv, table: table, hub: hub, http: ts}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.http.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// call issues a request expected to succeed at the HTTP level and decodes
// the bare JSON value into out.
func (e *testEnv) call(t *testing.T, method, path string, out any) {
	t.Helper()
	status, data := e.do(t, method, path, nil, "")
	require.Equal(t, http.StatusOK, status, string(data))
	require.NoError(t, json.Unmarshal(data, out), string(data))
}

func (e *testEnv) number(t *testing.T, method, path string) float64 {
	t.Helper()
	var v float64
	e.call(t, method, path, &v)
	return v
}

func (e *testEnv) text(t *testing.T, method, path string) string {
	t.Helper()
	var v string
	e.call(t, method, path, &v)
	return v
}

func TestEndToEndTradeRoundTrip(t *testing.T) {
	e := newTestEnv(t, 50)

	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/Initialize/1551102,132852,EURUSDi,AUDJPYi,CADJPYi,AUDCADi"))
	assert.Equal(t, 1.0, e.number(t, http.MethodGet, "/GetSessionCount"))
	assert.Equal(t, 1.0, e.number(t, http.MethodGet, "/FindExistingSession/1551102,EURUSDi,132852"))

	assert.Equal(t, 0.0, e.number(t, http.MethodPut, "/SetBidAsk/1,1.1,1.2,1.15,100"))
	assert.Equal(t, 1.1, e.number(t, http.MethodGet, "/GetBid/1"))
	assert.Equal(t, 1.2, e.number(t, http.MethodGet, "/GetAsk/1"))
	assert.Equal(t, 1.15, e.number(t, http.MethodGet, "/GetClose/1"))
	assert.Equal(t, 100.0, e.number(t, http.MethodGet, "/GetVolume/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/SendTradeCommands/1,0,EURUSD,0.1,1.2,1.1,1.3"))
	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/GetTradeOpCommand/1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/GetTradeOpCommand2/1"))
	assert.Equal(t, 0.1, e.number(t, http.MethodGet, "/GetTradeLots/1"))
	assert.Equal(t, "EURUSD", e.text(t, http.MethodGet, "/GetTradeCurrency/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodPut, "/SendResponse/1,0,0,filled,777"))
	assert.Equal(t, 777.0, e.number(t, http.MethodGet, "/GetTicketNumber/1"))
	assert.Equal(t, "filled", e.text(t, http.MethodGet, "/GetResponseMessage/1"))
	assert.Equal(t, model.ResponseNone, e.text(t, http.MethodGet, "/GetResponseMessage/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodDelete, "/ResetTradeCommand/1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/GetTradeOpCommand/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodDelete, "/DeInitialize/1"))
	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/GetSessionCount"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/GetBid/1"))
}

func TestSettersEchoSessionNumber(t *testing.T) {
	e := newTestEnv(t, 5)
	e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,")

	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/SetBid/1,1.05"))
	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/SetAsk/1,1.06"))
	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/SetBidCurrencyTwo/1,CADJPY,88.5"))

	q, err := e.table.Quote(1)
	require.NoError(t, err)
	assert.Equal(t, 1.05, q.Bid)
	assert.Equal(t, 1.06, q.Ask)

	leg, err := e.table.LegQuote(1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.LegQuote{Currency: "CADJPY", Bid: 88.5}, leg)
}

func TestInvalidArgumentsAreRejectedWithoutMutation(t *testing.T) {
	e := newTestEnv(t, 5)
	e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,")
	e.number(t, http.MethodPut, "/SetBidAsk/1,1.1,1.2,1.15,100")

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/GetBid/abc"},
		{http.MethodPut, "/SetBidAsk/1,x,1,1,1"},
		{http.MethodPut, "/SetBidAsk/1,1,1"},
		{http.MethodPut, "/SetBid/1,NaN"},
		{http.MethodPut, "/Initialize/abc,1,EURUSD,,,"},
		{http.MethodGet, "/SendTradeCommands/1,buy,EURUSD,0.1,1,1,1"},
	}
	for _, tc := range cases {
		t.Run(tc.method+tc.path, func(t *testing.T) {
			status, data := e.do(t, tc.method, tc.path, nil, "")
			assert.Equal(t, http.StatusBadRequest, status)

			var resp model.APIResponse
			require.NoError(t, json.Unmarshal(data, &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	q, err := e.table.Quote(1)
	require.NoError(t, err)
	assert.Equal(t, model.Quote{Bid: 1.1, Ask: 1.2, Close: 1.15, Volume: 100}, q)
	assert.Equal(t, 1, e.table.SessionCount())

	cmd, err := e.table.TradeCommand(1)
	require.NoError(t, err)
	assert.Equal(t, model.OpUnknown, cmd.Cmd)
}

func TestOutOfBoundsSentinels(t *testing.T) {
	e := newTestEnv(t, 5)

	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/GetBid/1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/GetBid/0"))
	assert.Equal(t, -1.0, e.number(t, http.MethodPut, "/SetBid/1,1.1"))
	assert.Equal(t, 2.0, e.number(t, http.MethodGet, "/GetAccountInfo/1"))
	assert.Equal(t, 2.0, e.number(t, http.MethodGet, "/GetDigits/1"))
	assert.Equal(t, 2.0, e.number(t, http.MethodGet, "/GetMarginInit/1"))
	assert.Equal(t, 2.0, e.number(t, http.MethodPut, "/SaveAccountInfo/1,1,1000,1000,100"))
	assert.Equal(t, 2.0, e.number(t, http.MethodDelete, "/DeInitialize/1"))
	assert.Equal(t, 2.0, e.number(t, http.MethodGet, "/SendTradeCommands/1,0,EURUSD,0.1,1,1,1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/GetTradeOpCommand1/1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodPut, "/SendResponse/1,0,0,ok,1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/RetrieveHistoricalClose/1,0"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/PipSize/1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/FindExistingSession/1,EURUSD,1"))

	assert.Equal(t, sentinelSession, e.text(t, http.MethodGet, "/GetSessionCurrency1/1"))
	assert.Equal(t, sentinelSession, e.text(t, http.MethodGet, "/GetSessionPeriod/1"))
	assert.Equal(t, sentinelTrade, e.text(t, http.MethodGet, "/GetTradeCurrency2/1"))
	assert.Equal(t, sentinelMessage, e.text(t, http.MethodGet, "/GetResponseMessage/1"))

	var s model.Session
	e.call(t, http.MethodGet, "/GetSession/1", &s)
	assert.Equal(t, model.Session{}, s)
}

func TestInitializeOnFullTable(t *testing.T) {
	e := newTestEnv(t, 1)

	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,"))
	assert.Equal(t, -1.0, e.number(t, http.MethodPut, "/Initialize/2,2,GBPUSD,,,"))
	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/Initialize/1,1,USDJPY,,,"))
}

func TestMultiCurrencyInitialization(t *testing.T) {
	e := newTestEnv(t, 5)

	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/InitializeCurrency1/7,70,AUDJPY.m1"))
	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/InitializeCurrency2/7,70,CADJPY,m1"))
	assert.Equal(t, 1.0, e.number(t, http.MethodPut, "/InitializeCurrency3/7,70,AUDCAD,m1"))
	assert.Equal(t, -1.0, e.number(t, http.MethodPut, "/InitializeCurrency3/7,70,AUDCAD,other"))

	assert.Equal(t, "AUDJPY", e.text(t, http.MethodGet, "/GetSessionCurrency1/1"))
	assert.Equal(t, "CADJPY", e.text(t, http.MethodGet, "/GetSessionCurrency2/1"))
	assert.Equal(t, "AUDCAD", e.text(t, http.MethodGet, "/GetSessionCurrency3/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/SendTradeCommands2/1,0,AUDJPY,0.1,1,CADJPY,0.2,0,AUDCAD,0.3"))
	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/GetTradeOpCommand1/1"))
	assert.Equal(t, 1.0, e.number(t, http.MethodGet, "/GetTradeOpCommand2/1"))
	assert.Equal(t, 0.3, e.number(t, http.MethodGet, "/GetTradeLots3/1"))
	assert.Equal(t, "CADJPY", e.text(t, http.MethodGet, "/GetTradeCurrency2/1"))
}

func TestRecordRoutes(t *testing.T) {
	e := newTestEnv(t, 5)
	e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,")

	assert.Equal(t, 0.0, e.number(t, http.MethodPut, "/SaveAccountInfo/1,1551102,10000.5,9800.25,100"))
	assert.Equal(t, 1551102.0, e.number(t, http.MethodGet, "/GetAccountNumber/1"))
	assert.Equal(t, 9800.25, e.number(t, http.MethodGet, "/GetAccountEquity/1"))

	var acct model.AccountInfo
	e.call(t, http.MethodGet, "/GetAccountInfo/1", &acct)
	assert.Equal(t, model.AccountInfo{Number: 1551102, Balance: 10000.5, Equity: 9800.25, Leverage: 100}, acct)

	assert.Equal(t, 0.0, e.number(t, http.MethodPut, "/SaveMarketInfo/1,1551102,100,EURUSD,0.00001,5,12,3"))
	assert.Equal(t, 5.0, e.number(t, http.MethodGet, "/GetDigits/1"))
	assert.Equal(t, 12.0, e.number(t, http.MethodGet, "/GetSpread/1"))
	assert.InDelta(t, 0.0001, e.number(t, http.MethodGet, "/PipSize/1"), 1e-12)

	assert.Equal(t, 0.0, e.number(t, http.MethodPut, "/SaveMarginInfo/1,EURUSD,132852,1000,500,250,1000,0"))
	assert.Equal(t, 500.0, e.number(t, http.MethodGet, "/GetMarginMaintenance/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodPut, "/SaveCurrencySessionInfo/1,EURUSD,132852,60,1551102"))
	assert.Equal(t, 60.0, e.number(t, http.MethodGet, "/GetSessionPeriod/1"))
	assert.Equal(t, 1.0, e.number(t, http.MethodGet, "/GetSessionHandle/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/SetSwapRateLong/1,-0.5"))
	assert.Equal(t, -0.5, e.number(t, http.MethodGet, "/GetSwapRateLong/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/SetOrderStatus/1,filled"))
	assert.Equal(t, "filled", e.text(t, http.MethodGet, "/GetOrderStatus/1"))

	assert.Equal(t, 0.0, e.number(t, http.MethodDelete, "/DecrementQueuePosition/1"))
	pos, err := e.table.QueuePosition(1)
	require.NoError(t, err)
	assert.Equal(t, -1, pos)
}

func TestBodyRoutes(t *testing.T) {
	e := newTestEnv(t, 5)
	e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,")

	status, data := e.do(t, http.MethodPost, "/SaveAllCurrencies",
		strings.NewReader(`{"session":1,"symbols":["EURUSD","GBPUSD"]}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"success"`, string(data))

	var list []string
	e.call(t, http.MethodGet, "/GetAllCurrencies/1", &list)
	assert.Equal(t, []string{"EURUSD", "GBPUSD"}, list)

	status, _ = e.do(t, http.MethodPost, "/SendTradeCommands",
		strings.NewReader("session=1&cmd=1&symbol=GBPUSD&lots=0.5&price=1.3&stoploss=1.4&profit=1.2&comment=hedge"),
		"application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, status)

	cmd, err := e.table.TradeCommand(1)
	require.NoError(t, err)
	assert.Equal(t, model.OpSell, cmd.Cmd)
	assert.Equal(t, "hedge", cmd.Comment)
	assert.Equal(t, 1.2, cmd.TakeProfit)

	status, _ = e.do(t, http.MethodPut, "/SetOrderStatus",
		strings.NewReader(`{"session":"1","status":"pending"}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending", e.text(t, http.MethodGet, "/GetOrderStatus/1"))
}

func TestSnapshotRoutes(t *testing.T) {
	e := newTestEnv(t, 3)
	e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,")
	e.number(t, http.MethodPut, "/SetBidAsk/1,1.1,1.2,1.15,100")

	var sessions []model.Session
	e.call(t, http.MethodGet, "/GetAllSessions", &sessions)
	require.Len(t, sessions, 3)
	assert.Equal(t, "EURUSD", sessions[0].Symbol)

	var p prices
	e.call(t, http.MethodGet, "/GetAllPrices", &p)
	require.Len(t, p.Bid, 3)
	assert.Equal(t, 1.1, p.Bid[0])
	assert.Equal(t, 0.0, p.Bid[1])

	var history [][]model.RateInfo
	e.call(t, http.MethodGet, "/GetAllCurrency2History", &history)
	assert.Len(t, history, 3)

	var snap bridge.Snapshot
	e.call(t, http.MethodGet, "/ResetAll", &snap)
	assert.Equal(t, 0, snap.SessionCount)
	require.Len(t, snap.Sessions, 3)
	assert.True(t, snap.Sessions[0].Free())
	assert.Equal(t, 0.0, e.number(t, http.MethodGet, "/GetSessionCount"))
	assert.Equal(t, 3.0, e.number(t, http.MethodGet, "/GetMaximumSessions"))
}

func TestInfoRoutes(t *testing.T) {
	e := newTestEnv(t, 3)

	assert.Equal(t, "5f4dcc3b5aa765d61d8327deb882cf99", e.text(t, http.MethodGet, "/md5/password"))
	assert.Contains(t, e.text(t, http.MethodGet, "/GetDllVersion"), "Metatrader API Version")

	var routes []string
	e.call(t, http.MethodGet, "/", &routes)
	assert.Contains(t, routes, "get -> /GetBid/{args}")
	assert.Contains(t, routes, "put -> /Initialize/{args}")

	var about map[string]any
	e.call(t, http.MethodGet, "/about", &about)
	assert.Equal(t, "metatrader-bridge", about["name"])

	status, data := e.do(t, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"version":"test"`)

	status, _ = e.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestMiddlewareHeaders(t *testing.T) {
	e := newTestEnv(t, 3)

	req, err := http.NewRequest(http.MethodOptions, e.http.URL+"/GetBid/1", nil)
	require.NoError(t, err)
	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, e.http.URL+"/GetSessionCount", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc123")
	resp, err = e.http.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc123", resp.Header.Get("X-Request-ID"))
}

func TestIndicatorRoutes(t *testing.T) {
	e := newTestEnv(t, 3)
	e.number(t, http.MethodPut, "/Initialize/1,1,EURUSD,,,")

	var rates strings.Builder
	rates.WriteString("[")
	for i := 0; i < 60; i++ {
		if i > 0 {
			rates.WriteString(",")
		}
		p := 1.0 + float64(i)*0.001
		rates.WriteString(`{"time":` + itoa(i) + `,"open":` + ftoa(p) + `,"high":` + ftoa(p+0.002) +
			`,"low":` + ftoa(p-0.002) + `,"close":` + ftoa(p+0.001) + `,"volume":100}`)
	}
	rates.WriteString("]")
	body, err := json.Marshal(map[string]any{"session": 1, "symbol": "EURUSD", "rates": rates.String(), "rates_total": 60})
	require.NoError(t, err)
	status, _ := e.do(t, http.MethodPost, "/SaveHistory", strings.NewReader(string(body)), "application/json")
	require.Equal(t, http.StatusOK, status)

	var ma indicator.MovingAverageSummary
	e.call(t, http.MethodGet, "/MovingAverages/1", &ma)
	assert.Equal(t, 2*len(indicator.MovingAveragePeriods), ma.Count.TotalBuy+ma.Count.TotalSell+ma.Count.TotalNeutral)
	assert.Equal(t, indicator.Buy, ma.MovingAverages.SMA["MA5"].Signal)

	var ti indicator.IndicatorSummary
	e.call(t, http.MethodGet, "/TechnicalIndicators/1,14", &ti)
	assert.Equal(t, 9, ti.Count.TotalBuy+ti.Count.TotalSell+ti.Count.TotalNeutral)
	assert.Equal(t, indicator.Neutral, ti.Indicators.ATR.Signal)

	assert.Equal(t, -1.0, e.number(t, http.MethodGet, "/MovingAverages/2"))
}

func itoa(i int) string { return strconv.Itoa(i) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
