package stub

import (
	"testing"

	"github.com/vovakirdan/roomsync/internal/core"
)

func TestJoinRoomSeatsAndSpectators(t *testing.T) {
	s := newState("r1")

	role, mark := joinRoom(s, "ana")
	if role != core.RolePlayer || mark != core.MarkX {
		t.Fatalf("ana should be player X, got %s/%s", role, mark)
	}
	role, mark = joinRoom(s, "bruno")
	if role != core.RolePlayer || mark != core.MarkO {
		t.Fatalf("bruno should be player O, got %s/%s", role, mark)
	}
	role, mark = joinRoom(s, "carla")
	if role != core.RoleSpectator || mark != core.NoMark {
		t.Fatalf("carla should spectate, got %s/%s", role, mark)
	}

	// Rejoining keeps the original seat.
	role, mark = joinRoom(s, "ana")
	if role != core.RolePlayer || mark != core.MarkX {
		t.Fatalf("ana rejoin changed her seat: %s/%s", role, mark)
	}
	if len(s.Players) != 2 || len(s.Spectators) != 1 {
		t.Fatalf("roster corrupted: %+v", s)
	}
	if s.Names["X"] != "ana" || s.Names["O"] != "bruno" {
		t.Fatalf("display names wrong: %+v", s.Names)
	}
}

func TestApplyMoveValidation(t *testing.T) {
	s := newState("r1")
	joinRoom(s, "ana")

	if err := applyMove(s, "ana", 0); err == nil {
		t.Fatal("move before second player must fail")
	}

	joinRoom(s, "bruno")

	if err := applyMove(s, "carla", 0); err == nil {
		t.Fatal("non-player move must fail")
	}
	if err := applyMove(s, "bruno", 0); err == nil {
		t.Fatal("O cannot open")
	}
	if err := applyMove(s, "ana", 9); err == nil {
		t.Fatal("out of range cell must fail")
	}
	if err := applyMove(s, "ana", 0); err != nil {
		t.Fatalf("valid opening rejected: %v", err)
	}
	if err := applyMove(s, "bruno", 0); err == nil {
		t.Fatal("occupied cell must fail")
	}
	if s.Turn != core.MarkO {
		t.Fatalf("turn should have passed to O, got %q", s.Turn)
	}
}

func TestEvaluateWinAndReset(t *testing.T) {
	s := newState("r1")
	joinRoom(s, "ana")
	joinRoom(s, "bruno")

	for _, mv := range []struct {
		name string
		cell int
	}{
		{"ana", 0}, {"bruno", 3}, {"ana", 1}, {"bruno", 4}, {"ana", 2},
	} {
		if err := applyMove(s, mv.name, mv.cell); err != nil {
			t.Fatalf("move %+v: %v", mv, err)
		}
	}

	if s.Winner != core.MarkX || s.Turn != core.NoMark {
		t.Fatalf("expected X win with no turn, got %+v", s)
	}
	if err := applyMove(s, "bruno", 5); err == nil {
		t.Fatal("no moves after the game is decided")
	}

	resetRoom(s)
	if !s.InProgress() || s.Turn != core.MarkX || len(s.Players) != 2 {
		t.Fatalf("reset broken: %+v", s)
	}
}

func TestEvaluateDraw(t *testing.T) {
	s := newState("r1")
	joinRoom(s, "ana")
	joinRoom(s, "bruno")

	// X O X / X O O / O X X — full board, no line.
	moves := []struct {
		name string
		cell int
	}{
		{"ana", 0}, {"bruno", 1}, {"ana", 2},
		{"bruno", 4}, {"ana", 3}, {"bruno", 5},
		{"ana", 7}, {"bruno", 6}, {"ana", 8},
	}
	for _, mv := range moves {
		if err := applyMove(s, mv.name, mv.cell); err != nil {
			t.Fatalf("move %+v: %v", mv, err)
		}
	}

	if !s.Draw || s.Winner != core.NoMark {
		t.Fatalf("expected a draw, got %+v", s)
	}
}
