package domain

// Role classifies what a principal is allowed to do. Roles are strictly
// ordered: user < admin < superadmin.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

// ParseRole maps a stored role string onto a known Role. Anything
// unrecognized (including the empty string) degrades to RoleUser.
func ParseRole(raw string) Role {
	r := Role(raw)
	if _, ok := roleRank[r]; ok {
		return r
	}
	return RoleUser
}

// Meets reports whether the role matches or exceeds the required one.
func (r Role) Meets(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// Principal is the normalized identity derived from a request's credentials.
// A nil *Principal means the caller is anonymous.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
