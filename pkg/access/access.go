// Package access implements the role hierarchy used for every authorization
// decision. It is a pure comparison over an explicit total order; callers are
// responsible for auditing denials.
package access

import "github.com/minhvu-dev/accountshop-backend/pkg/enums"

var roleRank = map[enums.Role]int{
	enums.RoleUser:       0,
	enums.RoleSupport:    1,
	enums.RoleAdmin:      2,
	enums.RoleSuperadmin: 3,
}

// Rank returns the ordinal privilege level of a role. Unknown roles rank
// below user so a typo can never grant privilege.
func Rank(role enums.Role) int {
	if rank, ok := roleRank[role]; ok {
		return rank
	}
	return -1
}

// HasPermission reports whether a principal holding role may act at the
// required level. Monotone: granting a level grants every level below it.
func HasPermission(role, required enums.Role) bool {
	return Rank(role) >= Rank(required) && Rank(role) >= 0
}
