// Package auth models the identity collaborator: every request arrives
// with a customer id and a role, and core operations take the resolved
// Identity as an explicit parameter.
package auth

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Identity struct {
	CustomerID string
	Role       Role
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }
