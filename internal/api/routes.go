package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// Failure values written with HTTP 200 when the table rejects a request.
const (
	sentinelNumber      = -1
	sentinelError       = model.RetError
	sentinelSession     = "ERROR"
	sentinelTrade       = "OUT OF BOUNDS"
	sentinelMessage     = "OUT_OF_BOUNDS"
	sentinelSaveSuccess = "success"
)

// respond writes 400 for bad arguments, sentinel when fn fails, and fn's
// value otherwise. fn is not called when argument coercion failed.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, a *args, sentinel any, fn func() (any, error)) {
	if err := a.Err(); err != nil {
		s.badRequest(w, r, err)
		return
	}
	v, err := fn()
	if err != nil {
		s.logger.Debug("api_rejected",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
		writeValue(w, sentinel)
		return
	}
	writeValue(w, v)
}

// sessionGetter serves routes whose only argument is the session number.
func (s *Server) sessionGetter(sentinel any, get func(n int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := pathArgs(r, "session")
		n := a.Int("session")
		s.respond(w, r, a, sentinel, func() (any, error) { return get(n) })
	}
}

// ok adapts a mutation to respond, answering RET_OK on success.
func ok(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return model.RetOK, nil
}
