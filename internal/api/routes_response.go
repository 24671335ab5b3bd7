package api

import (
	"net/http"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

func (s *Server) registerResponseRoutes() {
	s.handle("PUT /SendResponse/{args}", s.handleSendResponse)
	s.handle("GET /GetResponseErrorCode/{args}", s.responseField(func(r model.Response) any { return r.ErrorCode }))
	s.handle("GET /GetResponseCode/{args}", s.responseField(func(r model.Response) any { return r.RespCode }))
	s.handle("GET /GetTicketNumber/{args}", s.responseField(func(r model.Response) any { return r.Ticket }))

	// reading the message consumes it
	s.handle("GET /GetResponseMessage/{args}", s.sessionGetter(sentinelMessage, func(n int) (any, error) {
		return s.table.ReadResponseMessage(n)
	}))
}

func (s *Server) handleSendResponse(w http.ResponseWriter, r *http.Request) {
	a := pathArgs(r, "session", "errorcode", "respcode", "message", "ticket")
	n := a.Int("session")
	code := model.ErrorCode(a.Int("errorcode"))
	respCode, message, ticket := a.Int("respcode"), a.String("message"), a.Int64("ticket")
	s.respond(w, r, a, sentinelNumber, func() (any, error) {
		return ok(s.table.SendResponse(n, code, respCode, message, ticket))
	})
}

func (s *Server) responseField(pick func(model.Response) any) http.HandlerFunc {
	return s.sessionGetter(sentinelNumber, func(n int) (any, error) {
		resp, err := s.table.Response(n)
		if err != nil {
			return nil, err
		}
		return pick(resp), nil
	})
}
