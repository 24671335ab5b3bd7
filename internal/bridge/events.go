package bridge

import "time"

// EventType names a table mutation.
type EventType string

const (
	EventSessionInitialized EventType = "session_initialized"
	EventSessionReleased    EventType = "session_released"
	EventTableReset         EventType = "table_reset"
	EventTradeCommand       EventType = "trade_command"
	EventTradeCommandReset  EventType = "trade_command_reset"
	EventResponse           EventType = "response"
	EventQuote              EventType = "quote"
	EventHistory            EventType = "history"
)

// Event describes one mutation. Session is 0 for table-wide events.
type Event struct {
	Type    EventType `json:"type"`
	Session int       `json:"session"`
	Data    any       `json:"data,omitempty"`
	Time    time.Time `json:"time"`
}

// Observer receives events after the table lock has been released.
// It must not block.
type Observer func(Event)

func (t *Table) emit(typ EventType, session int, data any) {
	if t.observer == nil {
		return
	}
	t.observer(Event{Type: typ, Session: session, Data: data, Time: t.now()})
}
