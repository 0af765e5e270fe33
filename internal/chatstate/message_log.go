package chatstate

import "time"

// messageLog keeps one ordered message sequence per session key. All
// operations take an explicit key; the Store resolves "no key given" to the
// active session before calling down here, so this layer never has to guess.
type messageLog struct {
	logs map[string][]Message
}

func newMessageLog() *messageLog {
	return &messageLog{logs: make(map[string][]Message)}
}

func (l *messageLog) messages(key string) []Message {
	return l.logs[key]
}

func (l *messageLog) find(key, id string) int {
	for i, m := range l.logs[key] {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (l *messageLog) get(key, id string) (Message, bool) {
	if i := l.find(key, id); i >= 0 {
		return l.logs[key][i], true
	}
	return Message{}, false
}

// append inserts msg at the end of key's log. A duplicate id is a benign
// at-most-once retry from the transport and is dropped.
func (l *messageLog) append(key string, msg Message) bool {
	if l.find(key, msg.ID) >= 0 {
		return false
	}
	l.logs[key] = append(l.logs[key], msg)
	return true
}

// upsertStreaming stores the latest cumulative content snapshot for id.
// A missing id creates a new assistant message mid-stream. Chunks for an id
// that is no longer streaming are stale deliveries and are ignored; finalize
// is terminal. Reports whether the chunk was accepted.
func (l *messageLog) upsertStreaming(key, id, content string, media Media) bool {
	if i := l.find(key, id); i >= 0 {
		m := &l.logs[key][i]
		if !m.IsStreaming {
			return false
		}
		m.Content = content
		mergeMedia(m, media)
		return true
	}
	msg := Message{
		ID:          id,
		Role:        RoleAssistant,
		Content:     content,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
	mergeMedia(&msg, media)
	l.logs[key] = append(l.logs[key], msg)
	return true
}

// finalize marks id complete. Empty content keeps the last streamed text;
// a non-empty value overwrites it, even on a repeated finalize. An unknown
// id is a no-op (the caller still clears the typing indicator).
func (l *messageLog) finalize(key, id, content string, media Media) {
	i := l.find(key, id)
	if i < 0 {
		return
	}
	m := &l.logs[key][i]
	m.IsStreaming = false
	if content != "" {
		m.Content = content
	}
	mergeMedia(m, media)
}

func (l *messageLog) replaceAll(key string, msgs []Message) {
	l.logs[key] = append([]Message(nil), msgs...)
}

func (l *messageLog) clear(key string) {
	delete(l.logs, key)
}

func mergeMedia(m *Message, media Media) {
	if media.URL != "" {
		m.MediaURL = media.URL
	}
	if media.Type != "" {
		m.MediaType = media.Type
	}
}
