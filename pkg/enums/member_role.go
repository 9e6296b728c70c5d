package enums

import "fmt"

// MemberRole is a club board role. Capabilities attach to roles through
// role definitions, never to members directly.
type MemberRole string

const (
	MemberRolePresident MemberRole = "president"
	MemberRoleTreasurer MemberRole = "treasurer"
	MemberRoleSecretary MemberRole = "secretary"
	MemberRoleMember    MemberRole = "member"
	MemberRoleUser      MemberRole = "user"
)

var validMemberRoles = []MemberRole{
	MemberRolePresident,
	MemberRoleTreasurer,
	MemberRoleSecretary,
	MemberRoleMember,
	MemberRoleUser,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
