package chatstate

// sessionRegistry holds the catalog of sessions the gateway has reported
// plus the single active key. The catalog is pure display data: replacing
// it never touches the active key or any cached log, and a key absent from
// the catalog can still be active (a locally opened tab the gateway has not
// confirmed yet).
type sessionRegistry struct {
	sessions []Session
	active   string
}

func (r *sessionRegistry) setSessions(list []Session) {
	r.sessions = append([]Session(nil), list...)
}

func (r *sessionRegistry) setActive(key string) {
	r.active = key
}
