package chatstate

// draftCache stores the one uncommitted input string per session key.
// Drafts live for the life of the process; there is no expiry.
type draftCache struct {
	drafts map[string]string
}

func newDraftCache() *draftCache {
	return &draftCache{drafts: make(map[string]string)}
}

func (d *draftCache) set(key, text string) {
	d.drafts[key] = text
}

func (d *draftCache) get(key string) string {
	return d.drafts[key]
}

func (d *draftCache) clear(key string) {
	delete(d.drafts, key)
}
