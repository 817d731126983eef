package stub

import (
	"fmt"

	"github.com/vovakirdan/roomsync/internal/core"
)

var winCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type moveError struct {
	msg string
}

func (e *moveError) Error() string {
	return e.msg
}

func newState(id string) *core.RoomState {
	return &core.RoomState{
		ID:    id,
		Turn:  core.MarkX,
		Names: make(map[string]string),
	}
}

// joinRoom seats name as a player while seats remain, spectator after.
// Rejoining under the same name keeps the original seat.
func joinRoom(s *core.RoomState, name string) (core.Role, core.Mark) {
	if mark := s.MarkOf(name); mark != core.NoMark {
		return core.RolePlayer, mark
	}
	for _, sp := range s.Spectators {
		if sp == name {
			return core.RoleSpectator, core.NoMark
		}
	}

	if !s.Full() {
		s.Players = append(s.Players, name)
		mark := core.MarkX
		if len(s.Players) == 2 {
			mark = core.MarkO
		}
		s.Names[string(mark)] = name
		return core.RolePlayer, mark
	}

	s.Spectators = append(s.Spectators, name)
	return core.RoleSpectator, core.NoMark
}

// applyMove validates and performs one move, then evaluates the outcome.
func applyMove(s *core.RoomState, name string, cell int) error {
	mark := s.MarkOf(name)
	if mark == core.NoMark {
		return &moveError{msg: fmt.Sprintf("%s is not a player in this room", name)}
	}
	if !s.Full() {
		return &moveError{msg: "waiting for a second player"}
	}
	if !s.InProgress() {
		return &moveError{msg: "game is over, reset to play again"}
	}
	if cell < 0 || cell >= core.BoardSize {
		return &moveError{msg: fmt.Sprintf("cell %d out of range", cell)}
	}
	if s.Board[cell] != core.NoMark {
		return &moveError{msg: fmt.Sprintf("cell %d is already taken", cell)}
	}
	if s.Turn != mark {
		return &moveError{msg: fmt.Sprintf("it is not %s's turn", name)}
	}

	s.Board[cell] = mark
	evaluate(s)
	return nil
}

// evaluate updates winner/draw/turn after a move.
func evaluate(s *core.RoomState) {
	for _, combo := range winCombos {
		a, b, c := s.Board[combo[0]], s.Board[combo[1]], s.Board[combo[2]]
		if a != core.NoMark && a == b && b == c {
			s.Winner = a
			s.Turn = core.NoMark
			return
		}
	}

	for _, cell := range s.Board {
		if cell == core.NoMark {
			s.Turn = core.Opponent(s.Turn)
			return
		}
	}

	s.Draw = true
	s.Turn = core.NoMark
}

// resetRoom starts a fresh generation: board cleared, roster kept, X first.
func resetRoom(s *core.RoomState) {
	s.Board = [core.BoardSize]core.Mark{}
	s.Turn = core.MarkX
	s.Winner = core.NoMark
	s.Draw = false
}
