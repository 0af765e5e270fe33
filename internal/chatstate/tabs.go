package chatstate

// tabManager keeps the ordered open-tab sequence. Two rules hold after
// every operation: the sequence is never empty, and the main session key is
// never removed by a close. Both are enforced in ensureValid, nowhere else.
type tabManager struct {
	mainKey string
	open    []string
}

func newTabManager(mainKey string) *tabManager {
	return &tabManager{mainKey: mainKey, open: []string{mainKey}}
}

func (t *tabManager) contains(key string) bool {
	for _, k := range t.open {
		if k == key {
			return true
		}
	}
	return false
}

// openTab appends key if it is not already open.
func (t *tabManager) openTab(key string) {
	if !t.contains(key) {
		t.open = append(t.open, key)
	}
}

// closeTab removes key and reports whether anything changed. Closing the
// main key is refused.
func (t *tabManager) closeTab(key string) bool {
	if key == t.mainKey {
		return false
	}
	kept := t.open[:0]
	removed := false
	for _, k := range t.open {
		if k == key {
			removed = true
			continue
		}
		kept = append(kept, k)
	}
	t.open = kept
	t.ensureValid()
	return removed
}

// reorder replaces the sequence with newOrder, repaired rather than
// trusted: entries that are not currently open are dropped, and open keys
// missing from newOrder (the main key included) are re-appended in their
// previous relative order.
func (t *tabManager) reorder(newOrder []string) {
	seen := make(map[string]bool, len(newOrder))
	repaired := make([]string, 0, len(t.open))
	for _, k := range newOrder {
		if t.contains(k) && !seen[k] {
			repaired = append(repaired, k)
			seen[k] = true
		}
	}
	for _, k := range t.open {
		if !seen[k] {
			repaired = append(repaired, k)
			seen[k] = true
		}
	}
	t.open = repaired
	t.ensureValid()
}

// last returns the most recently opened remaining tab, the fallback active
// key after closing the active tab.
func (t *tabManager) last() string {
	return t.open[len(t.open)-1]
}

func (t *tabManager) ensureValid() {
	if len(t.open) == 0 {
		t.open = append(t.open, t.mainKey)
	}
}
