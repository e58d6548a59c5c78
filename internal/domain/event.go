package domain

import "fmt"

// EventCapacity is the number of event slots in one event log record.
const EventCapacity = 512

// eventHeadroom keeps spare slots so that cancels can still refund while the
// log is close to full and consumption has not run yet.
const eventHeadroom = 6

type EventType uint8

const (
	EventFill EventType = iota
	EventOut
)

func (t EventType) String() string {
	switch t {
	case EventFill:
		return "FILL"
	case EventOut:
		return "OUT"
	}
	return fmt.Sprintf("EVENT(%d)", uint8(t))
}

// Event is one pending settlement entitlement for a maker. BaseAmount and
// QuoteAmount are the total economic amounts the event credits, not per-lot
// figures. Side is the maker's side.
type Event struct {
	ID          uint64    `json:"id"`
	Type        EventType `json:"type"`
	Side        Side      `json:"side"`
	OrderID     uint64    `json:"order_id"`
	Maker       string    `json:"maker"`
	BaseAmount  uint64    `json:"base_amount"`
	QuoteAmount uint64    `json:"quote_amount"`
}

// EventLog is the bounded mailbox between matching and settlement. Unconsumed
// events occupy the contiguous prefix [0, EventsToProcess). TotalEventsCount
// only grows and is the source of event ids.
type EventLog struct {
	Market           string               `json:"market"`
	EventsToProcess  int                  `json:"events_to_process"`
	TotalEventsCount uint64               `json:"total_events_count"`
	Events           [EventCapacity]Event `json:"events"`
}

func NewEventLog(market string) *EventLog {
	return &EventLog{Market: market}
}

// CanAppend reports whether n more events fit, keeping the headroom.
func (l *EventLog) CanAppend(n int) bool {
	return l.EventsToProcess+n+eventHeadroom <= EventCapacity
}

// Append writes the event at the end of the pending prefix, assigning it the
// next lifetime id.
func (l *EventLog) Append(e Event) error {
	if l.EventsToProcess == EventCapacity {
		return ErrEventLogFull
	}
	l.TotalEventsCount++
	e.ID = l.TotalEventsCount
	l.Events[l.EventsToProcess] = e
	l.EventsToProcess++
	return nil
}

// Pending returns a copy of the unconsumed prefix.
func (l *EventLog) Pending() []Event {
	out := make([]Event, l.EventsToProcess)
	copy(out, l.Events[:l.EventsToProcess])
	return out
}

// Clear zeroes every consumed slot and resets the pending count. The lifetime
// counter is left alone.
func (l *EventLog) Clear() {
	for i := 0; i < l.EventsToProcess; i++ {
		l.Events[i] = Event{}
	}
	l.EventsToProcess = 0
}
