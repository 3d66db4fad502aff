package domain

import "slices"

type Role string

const (
	// RoleAdmin manages plans, organizations and the reset sweep.
	RoleAdmin Role = "admin"

	// RoleMember reads usage and plans for its own organization.
	RoleMember Role = "member"

	// RoleMetering is held by the chat and document pipelines that report token usage.
	RoleMetering Role = "metering"
)

var ValidRoles = []Role{RoleAdmin, RoleMember, RoleMetering}

func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, Role(role))
}
