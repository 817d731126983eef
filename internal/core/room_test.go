package core

import "testing"

func TestRoomStateResult(t *testing.T) {
	tests := []struct {
		name   string
		state  RoomState
		kind   ResultKind
		winner Mark
	}{
		{"fresh room", RoomState{Turn: MarkX}, ResultInProgress, NoMark},
		{"won by X", RoomState{Winner: MarkX}, ResultWon, MarkX},
		{"won by O", RoomState{Winner: MarkO}, ResultWon, MarkO},
		{"draw", RoomState{Draw: true}, ResultDraw, NoMark},
		{"winner beats draw flag", RoomState{Winner: MarkX, Draw: true}, ResultWon, MarkX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.state.Result()
			if res.Kind != tt.kind || res.Winner != tt.winner {
				t.Fatalf("got %+v, want kind=%v winner=%q", res, tt.kind, tt.winner)
			}
		})
	}
}

func TestRoomStateMarkOf(t *testing.T) {
	s := RoomState{Players: []string{"ana", "bruno"}}

	if got := s.MarkOf("ana"); got != MarkX {
		t.Fatalf("first seat should be X, got %q", got)
	}
	if got := s.MarkOf("bruno"); got != MarkO {
		t.Fatalf("second seat should be O, got %q", got)
	}
	if got := s.MarkOf("carla"); got != NoMark {
		t.Fatalf("spectator should have no mark, got %q", got)
	}
}

func TestRoomStateNameOf(t *testing.T) {
	s := RoomState{Names: map[string]string{"X": "ana"}}

	if got := s.NameOf(MarkX); got != "ana" {
		t.Fatalf("got %q, want ana", got)
	}
	if got := s.NameOf(MarkO); got != "O" {
		t.Fatalf("missing name should fall back to the mark, got %q", got)
	}
}

func TestRoomStateCloneIsDeep(t *testing.T) {
	s := &RoomState{
		ID:         "r1",
		Players:    []string{"ana"},
		Spectators: []string{"carla"},
		Names:      map[string]string{"X": "ana"},
	}

	c := s.Clone()
	c.Players[0] = "mallory"
	c.Spectators[0] = "mallory"
	c.Names["X"] = "mallory"
	c.Board[0] = MarkO

	if s.Players[0] != "ana" || s.Spectators[0] != "carla" || s.Names["X"] != "ana" || s.Board[0] != NoMark {
		t.Fatalf("clone shares memory with original: %+v", s)
	}

	var nilState *RoomState
	if nilState.Clone() != nil {
		t.Fatal("nil clone should stay nil")
	}
}

func TestOpponent(t *testing.T) {
	if Opponent(MarkX) != MarkO || Opponent(MarkO) != MarkX {
		t.Fatal("opponent mapping broken")
	}
}
