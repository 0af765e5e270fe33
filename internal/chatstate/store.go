package chatstate

import "sync"

// Store is the state container for the chat panel: per-session message
// logs, the session catalog, open tabs, drafts, the typing indicator, and
// the connection/usage mirrors. One instance is owned by the application
// shell; the gateway dispatcher and the API handlers share it by reference.
//
// Every exported method is one event-processing step. The mutex makes each
// step atomic with respect to every reader, which is the whole concurrency
// story: there is no finer-grained state to race on.
type Store struct {
	mu sync.Mutex

	mainKey  string
	log      *messageLog
	registry *sessionRegistry
	tabs     *tabManager
	drafts   *draftCache
	stream   *streamReconciler

	connStatus Status
	tokenUsage TokenUsage

	revision uint64
	watchers map[chan struct{}]struct{}
}

// Snapshot is the read model handed to presentation layers: everything the
// panel needs to render, captured in one locked step.
type Snapshot struct {
	Sessions  []Session  `json:"sessions"`
	ActiveKey string     `json:"activeKey"`
	OpenTabs  []string   `json:"openTabs"`
	Messages  []Message  `json:"messages"`
	Typing    bool       `json:"typing"`
	Status    Status     `json:"status"`
	Usage     TokenUsage `json:"usage"`
	Revision  uint64     `json:"revision"`
}

// NewStore creates a store with mainKey open and active. An empty mainKey
// falls back to DefaultMainKey.
func NewStore(mainKey string) *Store {
	if mainKey == "" {
		mainKey = DefaultMainKey
	}
	s := &Store{
		mainKey:  mainKey,
		log:      newMessageLog(),
		registry: &sessionRegistry{},
		tabs:     newTabManager(mainKey),
		drafts:   newDraftCache(),
		stream:   &streamReconciler{},
		watchers: make(map[chan struct{}]struct{}),
	}
	s.registry.setActive(mainKey)
	return s
}

// MainKey returns the designated main session key.
func (s *Store) MainKey() string {
	return s.mainKey
}

// changed bumps the revision and wakes watchers. Callers hold the mutex.
func (s *Store) changed() {
	s.revision++
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel that receives a tick whenever the store
// changes, plus a cancel func. Ticks are coalesced; a slow consumer sees at
// least one tick for any burst of changes.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()
	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

// resolve maps "no key given" to the active session at call time.
func (s *Store) resolve(key string) string {
	if key == "" {
		return s.registry.active
	}
	return key
}

// Append inserts msg into the active session's log; a duplicate id is
// silently dropped.
func (s *Store) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log.append(s.registry.active, msg) {
		s.changed()
	}
}

// UpsertStreaming applies a cumulative streaming snapshot for id to the
// session named by key ("" means active). Chunks for a finalized id are
// stale and ignored.
func (s *Store) UpsertStreaming(key, id, content string, media Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = s.resolve(key)
	if s.log.upsertStreaming(key, id, content, media) {
		s.stream.chunkAccepted(key == s.registry.active)
		s.changed()
	}
}

// Finalize marks id complete in the session named by key ("" means active)
// and always lowers the typing indicator, even for an unknown id.
func (s *Store) Finalize(key, id, content string, media Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.finalize(s.resolve(key), id, content, media)
	s.stream.finalized()
	s.changed()
}

// ReplaceHistory swaps in the full message history for key ("" means
// active), used when the gateway resumes a session.
func (s *Store) ReplaceHistory(key string, msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.replaceAll(s.resolve(key), msgs)
	s.changed()
}

// ClearSession drops the cached log and draft for key ("" means active).
// This is the one explicit cleanup path for abandoned streams.
func (s *Store) ClearSession(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = s.resolve(key)
	s.log.clear(key)
	s.drafts.clear(key)
	s.changed()
}

// SetSessions replaces the session catalog. Pure data refresh: the active
// key, tabs, logs and drafts are untouched, so a session that vanished from
// the catalog keeps its cached state until explicitly cleared.
func (s *Store) SetSessions(list []Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.setSessions(list)
	s.changed()
}

// SetActive switches the visible session. The typing indicator never
// survives a switch. The key does not have to be in the catalog or the tab
// sequence; an unknown key simply yields an empty message view until the
// catalog catches up.
func (s *Store) SetActive(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setActiveLocked(key)
	s.changed()
}

func (s *Store) setActiveLocked(key string) {
	s.registry.setActive(key)
	s.stream.sessionSwitched()
}

// OpenTab activates key, appending it to the open sequence first if it is
// not already there.
func (s *Store) OpenTab(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs.openTab(key)
	s.setActiveLocked(key)
	s.changed()
}

// CloseTab removes key from the open sequence. The main key refuses to
// close. If the closed tab was active, activation falls to the last
// remaining tab.
func (s *Store) CloseTab(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasActive := key == s.registry.active
	if !s.tabs.closeTab(key) {
		return
	}
	if wasActive {
		s.setActiveLocked(s.tabs.last())
	}
	s.changed()
}

// ReorderTabs applies a new tab order, repaired to stay a permutation of
// the currently open keys.
func (s *Store) ReorderTabs(order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs.reorder(order)
	s.changed()
}

// SetDraft stores the pending input text for key.
func (s *Store) SetDraft(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts.set(s.resolve(key), text)
	s.changed()
}

// Draft returns the pending input text for key, empty if none.
func (s *Store) Draft(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.get(s.resolve(key))
}

// SetStatus replaces the mirrored connection state wholesale.
func (s *Store) SetStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connStatus = st
	s.changed()
}

// SetUsage replaces the token-usage snapshot wholesale.
func (s *Store) SetUsage(u TokenUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenUsage = u
	s.changed()
}

// Messages returns a copy of the log for key ("" means active).
func (s *Store) Messages(key string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.log.messages(s.resolve(key))...)
}

// Message looks up a single message by id in the session named by key.
func (s *Store) Message(key, id string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.get(s.resolve(key), id)
}

// Sessions returns a copy of the catalog.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Session(nil), s.registry.sessions...)
}

// ActiveKey returns the active session key.
func (s *Store) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.active
}

// OpenTabs returns a copy of the open-tab sequence.
func (s *Store) OpenTabs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tabs.open...)
}

// Typing reports whether the assistant is producing output for the viewed
// session.
func (s *Store) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.typing
}

// Status returns the mirrored connection state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connStatus
}

// Usage returns the token-usage snapshot.
func (s *Store) Usage() TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenUsage
}

// Revision returns the current change counter.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Snapshot captures the full read model in one step.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Sessions:  append([]Session(nil), s.registry.sessions...),
		ActiveKey: s.registry.active,
		OpenTabs:  append([]string(nil), s.tabs.open...),
		Messages:  append([]Message(nil), s.log.messages(s.registry.active)...),
		Typing:    s.stream.typing,
		Status:    s.connStatus,
		Usage:     s.tokenUsage,
		Revision:  s.revision,
	}
}
