package websocket

import (
	"log"

	"github.com/ramonehamilton/cardsearch/internal/session"
)

// Event types.
const (
	EventSearchState = "search:state"
	EventPrintsState = "prints:state"
)

// SessionObserver forwards session state changes to WebSocket clients.
type SessionObserver struct {
	hub   *Hub
	debug bool
}

// NewSessionObserver creates an observer that broadcasts on hub.
func NewSessionObserver(hub *Hub, debug bool) *SessionObserver {
	return &SessionObserver{hub: hub, debug: debug}
}

// SearchChanged broadcasts the search channel.
func (o *SessionObserver) SearchChanged(st session.State) {
	o.emit(Event{Type: EventSearchState, Data: st})
}

// PrintsChanged broadcasts the prints channel.
func (o *SessionObserver) PrintsChanged(st session.PrintsState) {
	o.emit(Event{Type: EventPrintsState, Data: st})
}

func (o *SessionObserver) emit(event Event) {
	if o.hub == nil {
		return
	}
	if !o.hub.BroadcastEvent(event) {
		return
	}
	if o.debug {
		log.Printf("Broadcast %s to %d clients", event.Type, o.hub.ClientCount())
	}
}

// Welcome returns the current state of both channels as events, suitable
// for Hub.SetWelcome.
func Welcome(s *session.Session) func() []Event {
	return func() []Event {
		return []Event{
			{Type: EventSearchState, Data: s.Snapshot()},
			{Type: EventPrintsState, Data: s.PrintsSnapshot()},
		}
	}
}

var _ session.Observer = (*SessionObserver)(nil)
