package chatstate

// Event is the tagged union of everything the gateway can report. The
// dispatcher applies events through Store.Apply, which keeps the streaming
// reconciliation testable without a live transport.
//
// SessionKey on the message-bearing events is optional: empty means "the
// active session at call time", which is how chunks for the viewed session
// arrive; background sessions are addressed explicitly.
type Event interface {
	isEvent()
}

// SessionsUpdated replaces the session catalog.
type SessionsUpdated struct {
	Sessions []Session
}

// ChunkReceived carries a cumulative content snapshot for a streaming
// assistant turn.
type ChunkReceived struct {
	SessionKey string
	ID         string
	Content    string
	Media      Media
}

// Finalized completes a streaming turn. Empty Content keeps the last
// streamed text.
type Finalized struct {
	SessionKey string
	ID         string
	Content    string
	Media      Media
}

// HistoryReplaced swaps in a session's full message history.
type HistoryReplaced struct {
	SessionKey string
	Messages   []Message
}

// ConnectionChanged mirrors the transport link state.
type ConnectionChanged struct {
	Status Status
}

// UsageUpdated replaces the token-usage snapshot.
type UsageUpdated struct {
	Usage TokenUsage
}

func (SessionsUpdated) isEvent()   {}
func (ChunkReceived) isEvent()     {}
func (Finalized) isEvent()         {}
func (HistoryReplaced) isEvent()   {}
func (ConnectionChanged) isEvent() {}
func (UsageUpdated) isEvent()      {}

// Apply routes one gateway event to the owning component. A nil or unknown
// event is a no-op; nothing the transport sends can put the store in an
// error state.
func (s *Store) Apply(ev Event) {
	switch e := ev.(type) {
	case SessionsUpdated:
		s.SetSessions(e.Sessions)
	case ChunkReceived:
		s.UpsertStreaming(e.SessionKey, e.ID, e.Content, e.Media)
	case Finalized:
		s.Finalize(e.SessionKey, e.ID, e.Content, e.Media)
	case HistoryReplaced:
		s.ReplaceHistory(e.SessionKey, e.Messages)
	case ConnectionChanged:
		s.SetStatus(e.Status)
	case UsageUpdated:
		s.SetUsage(e.Usage)
	}
}
