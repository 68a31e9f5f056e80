package domain

// Role is the platform role carried in the caller's token.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Actor identifies the caller of an operation. A zero Actor is an
// anonymous viewer (public browse and detail reads allow that).
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAnonymous() bool { return a.UserID == "" }
func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsSeller() bool    { return a.Role == RoleSeller }
func (a Actor) IsBuyer() bool     { return a.Role == RoleBuyer }
