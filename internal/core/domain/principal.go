package domain

// Principal is the identity resolved from a validated token for a single
// request. It is built once by the authentication middleware and never
// mutated or shared across requests.
type Principal struct {
	ID       int64
	Username string
	Role     Role
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// PrincipalFor builds the request principal for an account.
func PrincipalFor(a *Account) *Principal {
	return &Principal{ID: a.ID, Username: a.Username, Role: a.Role}
}
