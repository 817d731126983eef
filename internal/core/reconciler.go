package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// Reconciler merges room snapshots and chat entries arriving from the
// push channel, the poll loop, and direct action responses into a single
// published view.
//
// The authority exposes no monotonic version counter, so the staleness
// policy is replace-on-arrival: every full snapshot is taken as
// authoritative and replaces the published state unconditionally, in
// arrival order, regardless of origin. Diffing board cells instead would
// risk masking a legitimate reset. This is an explicit contract, not an
// accident of call order.
//
// Reconciler is the single writer of the published state; all applies are
// serialized under one mutex and each is atomic with respect to readers.
type Reconciler struct {
	log *zerolog.Logger

	mu    sync.Mutex
	state *RoomState
	chat  ChatLog
	subs  []chan Notice
}

// NewReconciler builds a reconciler with no state published yet.
func NewReconciler(logger *zerolog.Logger) *Reconciler {
	return &Reconciler{log: logger}
}

// Apply replaces the published room state with the candidate. A nil
// candidate is ignored. The candidate is deep-copied on the way in, so
// callers may reuse their value.
func (r *Reconciler) Apply(candidate *RoomState, origin Origin) {
	if candidate == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = candidate.Clone()
	r.log.Debug().
		Str("origin", origin.String()).
		Str("room_id", candidate.ID).
		Str("turn", string(candidate.Turn)).
		Msg("room snapshot applied")
	r.publish(Notice{Kind: NoticeState, State: r.state.Clone()})
}

// ApplyChat appends the entry to the chat log unless it duplicates one
// already seen within the dedup window.
func (r *Reconciler) ApplyChat(entry ChatEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.chat.Append(entry) {
		r.log.Debug().
			Str("author", entry.Author).
			Str("source", entry.Source.String()).
			Msg("duplicate chat entry dropped")
		return
	}
	r.publish(Notice{Kind: NoticeChat, Entry: entry})
}

// SetLinked records push channel connectivity and notifies subscribers.
func (r *Reconciler) SetLinked(up bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish(Notice{Kind: NoticeLink, Linked: up})
}

// State returns a copy of the published room state, or nil before the
// first apply.
func (r *Reconciler) State() *RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Chat returns a copy of the chat log in arrival order.
func (r *Reconciler) Chat() []ChatEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chat.Entries()
}

// Subscribe registers a notification channel. Delivery is best-effort:
// notices to a full channel are dropped rather than blocking the writer,
// and the poll loop guarantees state convergence for slow readers.
func (r *Reconciler) Subscribe() <-chan Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Notice, 16)
	r.subs = append(r.subs, ch)
	return ch
}

func (r *Reconciler) publish(n Notice) {
	for _, sub := range r.subs {
		select {
		case sub <- n:
		default:
			// Drop if slow consumer.
		}
	}
}
