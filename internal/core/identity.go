package core

// Identity is the client-owned view of who this session is in a room.
// It is set once on join and never mutated by incoming messages; only an
// explicit leave or a new join replaces it.
type Identity struct {
	RoomID string
	Name   string
	Mark   Mark // NoMark for spectators
	Role   Role
}

// Joined reports whether the identity refers to an actual room membership.
func (id Identity) Joined() bool {
	return id.RoomID != "" && id.Name != ""
}
