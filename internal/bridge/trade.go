package bridge

import (
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// timestampLayout matches the terminal's TimeToString output.
const timestampLayout = "2006.01.02 15:04:05"

// SendTradeCommand queues a single-leg order. Legs 2 and 3 are cleared so the
// terminal does not replay a previous multi-leg order.
func (t *Table) SendTradeCommand(n int, o model.TradeOrder) error {
	ts := t.now().Format(timestampLayout)
	var cmd model.TradeCommand
	err := t.update(n, func(r *record) {
		r.trade.Cmd = o.Cmd
		r.trade.Symbol = o.Symbol
		r.trade.Lots = o.Lots
		r.trade.Price = o.Price
		r.trade.StopLoss = o.StopLoss
		r.trade.TakeProfit = o.TakeProfit
		r.trade.Comment = o.Comment
		r.trade.Cmd2 = model.OpNone
		r.trade.Cmd3 = model.OpNone
		r.trade.Timestamp = ts
		r.trade.Completed = 0
		cmd = r.trade
	})
	if err != nil {
		return err
	}

	t.logger.Info("trade_command",
		zap.Int("session", n),
		zap.Int("cmd", int(o.Cmd)),
		zap.String("symbol", o.Symbol),
		zap.Float64("lots", o.Lots),
	)
	t.emit(EventTradeCommand, n, cmd)
	return nil
}

// SendTradeCommands2 queues a three-leg order. The primary command is left
// as it is.
func (t *Table) SendTradeCommands2(n int, o model.MultiLegOrder) error {
	ts := t.now().Format(timestampLayout)
	var cmd model.TradeCommand
	err := t.update(n, func(r *record) {
		r.trade.Cmd1 = o.Cmd1
		r.trade.Cmd2 = o.Cmd2
		r.trade.Cmd3 = o.Cmd3
		r.trade.Symbol1 = o.Symbol1
		r.trade.Symbol2 = o.Symbol2
		r.trade.Symbol3 = o.Symbol3
		r.trade.Lots = o.Lots1
		r.trade.Lots2 = o.Lots2
		r.trade.Lots3 = o.Lots3
		r.trade.Timestamp = ts
		r.trade.Completed = 0
		cmd = r.trade
	})
	if err != nil {
		return err
	}

	t.logger.Info("trade_command",
		zap.Int("session", n),
		zap.Int("cmd1", int(o.Cmd1)),
		zap.Int("cmd2", int(o.Cmd2)),
		zap.Int("cmd3", int(o.Cmd3)),
		zap.String("symbol1", o.Symbol1),
	)
	t.emit(EventTradeCommand, n, cmd)
	return nil
}

// ResetTradeCommand clears the four action codes of slot n. Symbols, lots
// and prices are kept.
func (t *Table) ResetTradeCommand(n int) error {
	err := t.update(n, func(r *record) {
		r.trade.Cmd = model.OpNone
		r.trade.Cmd1 = model.OpNone
		r.trade.Cmd2 = model.OpNone
		r.trade.Cmd3 = model.OpNone
	})
	if err != nil {
		return err
	}
	t.emit(EventTradeCommandReset, n, nil)
	return nil
}

func (t *Table) TradeCommand(n int) (model.TradeCommand, error) {
	var out model.TradeCommand
	err := t.read(n, func(r *record) { out = r.trade })
	return out, err
}

// DecrementQueuePosition lowers the queue position of slot n by one and
// returns the new value. There is no floor.
func (t *Table) DecrementQueuePosition(n int) (int, error) {
	var pos int
	err := t.update(n, func(r *record) {
		r.queuePos--
		pos = r.queuePos
	})
	return pos, err
}

func (t *Table) QueuePosition(n int) (int, error) {
	var pos int
	err := t.read(n, func(r *record) { pos = r.queuePos })
	return pos, err
}
