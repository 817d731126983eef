package core

// BoardSize is the fixed number of cells on the board.
const BoardSize = 9

// Mark is one of the two move symbols, or empty.
type Mark string

const (
	MarkX  Mark = "X"
	MarkO  Mark = "O"
	NoMark Mark = ""
)

// Opponent returns the other player's mark.
func Opponent(m Mark) Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// Role describes how a participant takes part in a room.
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// ResultKind classifies the outcome carried by a room snapshot.
type ResultKind int

const (
	// ResultInProgress means the game has not finished.
	ResultInProgress ResultKind = iota
	// ResultWon means one mark has a winning line.
	ResultWon
	// ResultDraw means the board filled with no winner.
	ResultDraw
)

// Result is the game outcome embedded in a room snapshot. The authority
// owns win/draw detection; the client only reads it back.
type Result struct {
	Kind   ResultKind
	Winner Mark
}

// RoomState is a complete snapshot of one game room at a point in time.
// Snapshots are immutable by replacement: the reconciler stores and hands
// out deep copies, never a shared handle.
type RoomState struct {
	ID         string
	Board      [BoardSize]Mark
	Players    []string
	Spectators []string
	Turn       Mark
	Names      map[string]string
	Winner     Mark
	Draw       bool
}

// Result derives the outcome from the winner/draw fields.
func (s *RoomState) Result() Result {
	switch {
	case s.Winner != NoMark:
		return Result{Kind: ResultWon, Winner: s.Winner}
	case s.Draw:
		return Result{Kind: ResultDraw}
	default:
		return Result{Kind: ResultInProgress}
	}
}

// InProgress reports whether moves are still accepted.
func (s *RoomState) InProgress() bool {
	return s.Result().Kind == ResultInProgress
}

// Full reports whether both player seats are taken.
func (s *RoomState) Full() bool {
	return len(s.Players) == 2
}

// MarkOf returns the mark assigned to a participant name, or NoMark for
// spectators and unknown names. Seat order defines marks: first is X.
func (s *RoomState) MarkOf(name string) Mark {
	for i, p := range s.Players {
		if p != name {
			continue
		}
		if i == 0 {
			return MarkX
		}
		return MarkO
	}
	return NoMark
}

// NameOf resolves the display name for a mark, falling back to the mark
// itself when no name was registered.
func (s *RoomState) NameOf(m Mark) string {
	if n, ok := s.Names[string(m)]; ok && n != "" {
		return n
	}
	return string(m)
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *RoomState) Clone() *RoomState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = append([]string(nil), s.Players...)
	out.Spectators = append([]string(nil), s.Spectators...)
	if s.Names != nil {
		out.Names = make(map[string]string, len(s.Names))
		for k, v := range s.Names {
			out.Names[k] = v
		}
	}
	return &out
}
