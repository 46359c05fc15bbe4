package services

// Identity is the authenticated caller of a service operation.
type Identity struct {
	UserID   uint
	Username string
}

// Authenticated reports whether the identity refers to a logged-in user.
func (id Identity) Authenticated() bool {
	return id.UserID != 0
}

func requireIdentity(id Identity) error {
	if !id.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}
