package core

import "time"

// dedupWindow bounds how far back Append scans for duplicates. The
// authority assigns no sequence numbers to chat messages, so identity is
// the best-effort (author, text, sentAt) triple; duplicates realistically
// appear only within a short window where push and poll overlap.
const dedupWindow = 50

// ChatEntry is one immutable chat message as mirrored from the authority.
type ChatEntry struct {
	Author string
	Role   Role
	Text   string
	SentAt time.Time
	Source Origin
}

func (e ChatEntry) sameIdentity(o ChatEntry) bool {
	return e.Author == o.Author && e.Text == o.Text && e.SentAt.Equal(o.SentAt)
}

// ChatLog is an append-only, arrival-ordered sequence of chat entries.
// SentAt is display-only: it may come from the server clock or from a
// client fallback clock and is not strictly increasing across sources,
// so arrival order stays the primary ordering.
type ChatLog struct {
	entries []ChatEntry
}

// Append adds the entry unless an identical (author, text, sentAt) triple
// already exists within the dedup window. Returns true if appended.
func (l *ChatLog) Append(e ChatEntry) bool {
	start := len(l.entries) - dedupWindow
	if start < 0 {
		start = 0
	}
	for _, have := range l.entries[start:] {
		if have.sameIdentity(e) {
			return false
		}
	}
	l.entries = append(l.entries, e)
	return true
}

// Entries returns a copy of the log in arrival order.
func (l *ChatLog) Entries() []ChatEntry {
	return append([]ChatEntry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *ChatLog) Len() int {
	return len(l.entries)
}
