// Package model defines shared data types used across all bridge modules.
package model

import "time"

// ErrorCode is the numeric result code returned to the terminal.
type ErrorCode int

const (
	RetOK               ErrorCode = 0
	RetOKNone           ErrorCode = 1
	RetError            ErrorCode = 2
	RetInvalidData      ErrorCode = 3
	RetTechProblem      ErrorCode = 4
	RetAccountDisabled  ErrorCode = 5
	RetBadAccountInfo   ErrorCode = 6
	RetTimeout          ErrorCode = 7
	RetBadPrices        ErrorCode = 8
	RetMarketClosed     ErrorCode = 9
	RetTradeDisable     ErrorCode = 10
	RetNoMoney          ErrorCode = 11
	RetPriceChanged     ErrorCode = 12
	RetOffquotes        ErrorCode = 13
	RetBrokerBusy       ErrorCode = 14
	RetOldVersion       ErrorCode = 15
	RetMultiConnect     ErrorCode = 16
	RetNoConnect        ErrorCode = 17
	RetNotEnoughRights  ErrorCode = 18
	RetBadStops         ErrorCode = 19
	RetSkipped          ErrorCode = 20
	RetTooFrequent      ErrorCode = 21
	RetInvalidVolume    ErrorCode = 22
	RetInvalidHandle    ErrorCode = 23
	RetInstantExecution ErrorCode = 24
)

// OpCommand is a trade operation code as understood by the terminal.
type OpCommand int

const (
	OpBuy          OpCommand = 0
	OpSell         OpCommand = 1
	OpBuyLimit     OpCommand = 2
	OpSellLimit    OpCommand = 3
	OpBuyStop      OpCommand = 4
	OpSellStop     OpCommand = 5
	OpBalance      OpCommand = 6
	OpCredit       OpCommand = 7
	OpClosePending OpCommand = 8
	OpCloseAll     OpCommand = 9
	OpUnknown      OpCommand = 10

	// OpNone marks a leg (or a reset primary) with no pending action.
	OpNone OpCommand = -1
)

// ResponseNone is returned by the mailbox once the message has been read.
const ResponseNone = "NONE"

// Session identifies one slot of the session table.
type Session struct {
	AccountNumber int64  `json:"acctnum"`
	Handle        int64  `json:"handle"`
	Symbol        string `json:"symbol"`
	Symbol1       string `json:"symbol1"`
	Symbol2       string `json:"symbol2"`
	Symbol3       string `json:"symbol3"`
	Index         int    `json:"index"`
	Magic         string `json:"magic"`
	OrderStatus   string `json:"order_status"`
}

// Free reports whether the slot is unallocated.
func (s Session) Free() bool {
	return s.Index == 0
}

// AccountInfo is a flat account snapshot pushed by the terminal.
type AccountInfo struct {
	Number   int64   `json:"number"`
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Leverage int     `json:"leverage"`
}

// CurrencyPairInfo describes the chart a session is attached to.
type CurrencyPairInfo struct {
	ID     int    `json:"id"`
	Symbol string `json:"symbol"`
	Handle int64  `json:"handle"`
	Period int    `json:"period"`
	Number int64  `json:"number"`
}

// MarketInfo holds instrument metadata.
type MarketInfo struct {
	Number    int64   `json:"number"`
	Leverage  int     `json:"leverage"`
	Symbol    string  `json:"symbol"`
	Points    float64 `json:"points"`
	Digits    int     `json:"digits"`
	Spread    float64 `json:"spread"`
	StopLevel float64 `json:"stoplevel"`
}

// MarginInfo holds instrument margin requirements.
type MarginInfo struct {
	Symbol            string  `json:"symbol"`
	Handle            int64   `json:"handle"`
	MarginInit        float64 `json:"margininit"`
	MarginMaintenance float64 `json:"marginmaintenance"`
	MarginHedged      float64 `json:"marginhedged"`
	MarginRequired    float64 `json:"marginrequired"`
	MarginCalcMode    int     `json:"margincalcmode"`
}

// RateInfo is a single OHLCV candle.
type RateInfo struct {
	Time   int64   `json:"ctm"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"vol"`
}

// PriceSeries holds per-field arrays of a history ring, oldest first.
type PriceSeries struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

// Tick is a bid/ask snapshot with account margin figures.
type Tick struct {
	Symbol     string  `json:"symbol"`
	TickDate   string  `json:"tickdate"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Equity     float64 `json:"equity"`
	Margin     float64 `json:"margin"`
	FreeMargin float64 `json:"freemargin"`
}

// Quote is the latest price set for a session.
type Quote struct {
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// LegQuote is the latest bid of one auxiliary currency of a session.
type LegQuote struct {
	Currency string  `json:"currency"`
	Bid      float64 `json:"bid"`
}

// SwapRates holds the overnight swap for both directions.
type SwapRates struct {
	Long  float64 `json:"long"`
	Short float64 `json:"short"`
}

// TradeCommand is the pending order a session's terminal should execute.
type TradeCommand struct {
	Cmd        OpCommand `json:"cmd"`
	Cmd1       OpCommand `json:"cmd1"`
	Cmd2       OpCommand `json:"cmd2"`
	Cmd3       OpCommand `json:"cmd3"`
	Symbol     string    `json:"symbol"`
	Symbol1    string    `json:"symbol1"`
	Symbol2    string    `json:"symbol2"`
	Symbol3    string    `json:"symbol3"`
	Lots       float64   `json:"lots"`
	Lots2      float64   `json:"lots2"`
	Lots3      float64   `json:"lots3"`
	Price      float64   `json:"price"`
	Slippage   int       `json:"slippage"`
	StopLoss   float64   `json:"stoploss"`
	TakeProfit float64   `json:"takeprofit"`
	Comment    string    `json:"comment"`
	Color      int       `json:"color"`
	Timestamp  string    `json:"timestamp"`
	Completed  int       `json:"completed"`
	Handle     int64     `json:"handle"`
	Magic      string    `json:"magic"`
	Expiration string    `json:"expiration"`
	Volume     float64   `json:"volume"`
	Ticket     int64     `json:"ticket"`
}

// TradeOrder is a single-leg order submission.
type TradeOrder struct {
	Cmd        OpCommand
	Symbol     string
	Lots       float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Comment    string
}

// MultiLegOrder is a three-leg order submission.
type MultiLegOrder struct {
	Cmd1, Cmd2, Cmd3          OpCommand
	Symbol1, Symbol2, Symbol3 string
	Lots1, Lots2, Lots3       float64
}

// Response is the single-slot mailbox for terminal execution results.
type Response struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"errorcode"`
	RespCode  int       `json:"respcode"`
	Read      int       `json:"read"`
	Ticket    int64     `json:"tradeid"`
	Timestamp time.Time `json:"timestamp"`
}

// APIResponse is the envelope used for operational endpoints and errors.
type APIResponse struct {
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WSMessage is a WebSocket broadcast message.
type WSMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
