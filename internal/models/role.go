package models

import (
	"fmt"
	"strings"
)

// Role is one of the fixed account roles of the management application.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleHR         Role = "hr"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
)

// Capability is a single permission bit. Roles map to capability sets and
// authorization checks test membership, never role names.
type Capability uint32

const (
	CapChat Capability = 1 << iota
	CapManageUsers
	CapViewAnalytics
	CapAdminPanel
	CapHRPortal
	CapClientPortal
	CapEmployeePortal
)

var roleCapabilities = map[Role]Capability{
	RoleSuperAdmin: CapChat | CapManageUsers | CapViewAnalytics | CapAdminPanel | CapHRPortal | CapClientPortal | CapEmployeePortal,
	RoleAdmin:      CapChat | CapAdminPanel | CapHRPortal | CapClientPortal | CapEmployeePortal,
	RoleHR:         CapChat | CapHRPortal | CapEmployeePortal,
	RoleEmployee:   CapChat | CapEmployeePortal,
	RoleClient:     CapChat | CapClientPortal,
}

// Roles returns every known role in privilege order.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleHR, RoleEmployee, RoleClient}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capabilities returns the capability set granted to the role. Unknown roles
// get the empty set.
func (r Role) Capabilities() Capability {
	return roleCapabilities[r]
}

// Can reports whether the role holds every capability in c.
func (r Role) Can(c Capability) bool {
	if c == 0 {
		return false
	}
	return r.Capabilities()&c == c
}

func (r Role) String() string {
	return string(r)
}
