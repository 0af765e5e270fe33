package chatstate

// streamReconciler tracks the user-facing "assistant is thinking" flag for
// the session being viewed. It is a two-state machine: idle until a chunk
// lands on the active session, back to idle on any finalize or on a session
// switch. It is deliberately not per-message: out-of-order completions of
// unrelated ids still resolve to a single indicator.
type streamReconciler struct {
	typing bool
}

// chunkAccepted is called after the log took a streaming chunk. Only chunks
// on the active session raise the indicator; background sessions accumulate
// silently.
func (r *streamReconciler) chunkAccepted(active bool) {
	if active {
		r.typing = true
	}
}

// finalized always lowers the indicator, whether or not the referenced id
// existed. The indicator is a liveness signal, not a per-message guarantee.
func (r *streamReconciler) finalized() {
	r.typing = false
}

// sessionSwitched lowers the indicator: a switch never carries over an
// in-flight spinner, even though the data keeps accumulating underneath.
func (r *streamReconciler) sessionSwitched() {
	r.typing = false
}
