package entity

import "github.com/google/uuid"

// Actor is the authenticated caller of an operation. It is passed explicitly
// into every usecase instead of being read from ambient request state.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     Role
}

// Is reports whether the actor holds role r.
func (a Actor) Is(r Role) bool {
	return a.UserID != uuid.Nil && a.Role == r
}
