package user

import "time"

// User is the directory entry the engine consumes: it supplies the actor's
// role and store scope for punch and approval authorization. Advisors are
// the only role that punches; managers decide requests for their own store.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	StoreID      *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAdvisor Role = "advisor"
)

var RoleValues = []string{
	string(RoleAdmin),
	string(RoleManager),
	string(RoleAdvisor),
}

// CanPunch reports whether the user may create attendance records.
func (u User) CanPunch() bool {
	return u.IsActive && u.Role == RoleAdvisor && u.StoreID != nil
}
