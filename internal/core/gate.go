package core

// CanPlay reports whether the actor may place its mark at cell given the
// current snapshot. It is a pure predicate with no side effects and gates
// the local move affordance only; the authority still validates every
// move it receives.
func CanPlay(s *RoomState, cell int, role Role, mark Mark) bool {
	if s == nil || cell < 0 || cell >= BoardSize {
		return false
	}
	if !s.InProgress() {
		return false
	}
	if s.Board[cell] != NoMark {
		return false
	}
	if role != RolePlayer {
		return false
	}
	if mark == NoMark || mark != s.Turn {
		return false
	}
	if !s.Full() {
		return false
	}
	return true
}
