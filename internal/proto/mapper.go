package proto

import (
	"time"

	"github.com/vovakirdan/roomsync/internal/core"
)

// RoomToState converts a wire room into the domain snapshot. Boards
// shorter than 9 cells are padded with empties; longer ones truncated,
// so a malformed snapshot can never panic the receiver.
func RoomToState(r *Room) *core.RoomState {
	if r == nil {
		return nil
	}
	s := &core.RoomState{
		ID:         r.ID,
		Players:    append([]string(nil), r.Players...),
		Spectators: append([]string(nil), r.Spectators...),
		Turn:       core.Mark(r.Turn),
		Winner:     core.Mark(r.Winner),
		Draw:       r.Draw,
	}
	for i := 0; i < core.BoardSize && i < len(r.Board); i++ {
		s.Board[i] = core.Mark(r.Board[i])
	}
	if r.Names != nil {
		s.Names = make(map[string]string, len(r.Names))
		for k, v := range r.Names {
			s.Names[k] = v
		}
	}
	return s
}

// StateToRoom converts a domain snapshot into its wire form.
func StateToRoom(s *core.RoomState) *Room {
	if s == nil {
		return nil
	}
	r := &Room{
		ID:         s.ID,
		Board:      make([]string, core.BoardSize),
		Players:    append([]string(nil), s.Players...),
		Spectators: append([]string(nil), s.Spectators...),
		Turn:       string(s.Turn),
		Winner:     string(s.Winner),
		Draw:       s.Draw,
	}
	for i, m := range s.Board {
		r.Board[i] = string(m)
	}
	if s.Names != nil {
		r.Names = make(map[string]string, len(s.Names))
		for k, v := range s.Names {
			r.Names[k] = v
		}
	}
	return r
}

// ChatEntry builds a domain chat entry from a chat_message envelope.
// A missing or unparsable timestamp falls back to the client clock;
// SentAt is display-only either way.
func (e *Envelope) ChatEntry(source core.Origin) core.ChatEntry {
	role := core.Role(e.SenderRole)
	if role != core.RoleSpectator {
		role = core.RolePlayer
	}
	sentAt, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		sentAt = time.Now()
	}
	return core.ChatEntry{
		Author: e.Sender,
		Role:   role,
		Text:   e.Message,
		SentAt: sentAt,
		Source: source,
	}
}
