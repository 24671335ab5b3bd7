package bridge

import (
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// readMarker is stored in Response.Read once the message has been consumed.
const readMarker = -1

// SendResponse overwrites the mailbox of slot n. The read flag is cleared
// unless the table was built WithKeepReadFlag.
func (t *Table) SendResponse(n int, code model.ErrorCode, respCode int, message string, ticket int64) error {
	var resp model.Response
	err := t.update(n, func(r *record) {
		read := 0
		if t.keepReadFlag {
			read = r.response.Read
		}
		r.response = model.Response{
			Message:   message,
			ErrorCode: code,
			RespCode:  respCode,
			Read:      read,
			Ticket:    ticket,
			Timestamp: t.now(),
		}
		resp = r.response
	})
	if err != nil {
		return err
	}

	t.logger.Info("response",
		zap.Int("session", n),
		zap.Int("error_code", int(code)),
		zap.Int("resp_code", respCode),
		zap.Int64("ticket", ticket),
	)
	t.emit(EventResponse, n, resp)
	return nil
}

// ReadResponseMessage returns the pending message of slot n once. Later calls
// return model.ResponseNone until a new response arrives.
func (t *Table) ReadResponseMessage(n int) (string, error) {
	var msg string
	err := t.update(n, func(r *record) {
		if r.response.Read != 0 {
			msg = model.ResponseNone
			return
		}
		msg = r.response.Message
		r.response.Read = readMarker
	})
	return msg, err
}

// Response returns the mailbox of slot n without consuming it.
func (t *Table) Response(n int) (model.Response, error) {
	var out model.Response
	err := t.read(n, func(r *record) { out = r.response })
	return out, err
}
