package model

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint64
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
