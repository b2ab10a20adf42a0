package enums

import "fmt"

// BoardRole represents a kanban board permissions role.
type BoardRole string

const (
	BoardRoleOwner  BoardRole = "owner"
	BoardRoleMember BoardRole = "member"
)

// DefaultBoardRole is assigned when an invitation does not name a role.
const DefaultBoardRole = BoardRoleMember

var validBoardRoles = []BoardRole{
	BoardRoleOwner,
	BoardRoleMember,
}

// String implements fmt.Stringer.
func (r BoardRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known BoardRole.
func (r BoardRole) IsValid() bool {
	for _, candidate := range validBoardRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseBoardRole converts raw input into a BoardRole. Empty input yields DefaultBoardRole.
func ParseBoardRole(value string) (BoardRole, error) {
	if value == "" {
		return DefaultBoardRole, nil
	}
	for _, candidate := range validBoardRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid board role %q", value)
}
