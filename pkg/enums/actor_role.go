package enums

import "fmt"

// ActorRole is the operator role carried in the access token.
type ActorRole string

const (
	ActorRoleOperator  ActorRole = "operator"
	ActorRoleInspector ActorRole = "inspector"
	ActorRoleManager   ActorRole = "manager"
	ActorRoleAdmin     ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleOperator,
	ActorRoleInspector,
	ActorRoleManager,
	ActorRoleAdmin,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// CanApproveRefunds reports whether the role clears the elevated approval gate.
func (a ActorRole) CanApproveRefunds() bool {
	return a == ActorRoleManager || a == ActorRoleAdmin
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
