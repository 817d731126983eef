package core

// Origin tells the reconciler which channel produced a candidate.
type Origin int

const (
	// OriginPush marks candidates decoded from the event stream.
	OriginPush Origin = iota
	// OriginPoll marks candidates fetched by the periodic full-state pull.
	OriginPoll
	// OriginResponse marks snapshots embedded in direct action responses.
	OriginResponse
)

func (o Origin) String() string {
	switch o {
	case OriginPush:
		return "push"
	case OriginPoll:
		return "poll"
	case OriginResponse:
		return "response"
	default:
		return "unknown"
	}
}

// NoticeKind describes what a published notice is about.
type NoticeKind int

const (
	// NoticeState signals that the published room snapshot was replaced.
	NoticeState NoticeKind = iota
	// NoticeChat signals a newly appended chat entry.
	NoticeChat
	// NoticeLink signals a push channel connectivity change.
	NoticeLink
)

// Notice is delivered to subscribers on every published change. State is
// a private deep copy per notice; readers may keep or mutate it freely.
type Notice struct {
	Kind   NoticeKind
	State  *RoomState
	Entry  ChatEntry
	Linked bool
}
