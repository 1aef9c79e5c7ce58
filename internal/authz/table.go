package authz

import "fmt"

// Table is the static role → permissions mapping. It is built once at process
// start, validated, and read-only thereafter, so it may be shared across
// concurrent requests without locking.
type Table struct {
	entries map[Role][]Permission
}

// NewTable validates and builds a policy table. Every role in the closed enum
// must have an entry (possibly empty), and a role may hold at most one
// permission per resource. A violation is a programming error surfaced at
// startup, never per request.
func NewTable(grants map[Role][]Permission) (*Table, error) {
	entries := make(map[Role][]Permission, len(grants))
	for role, perms := range grants {
		if !role.Valid() {
			return nil, fmt.Errorf("authz: unknown role %q in policy table", role)
		}
		seen := make(map[Resource]struct{}, len(perms))
		for _, perm := range perms {
			if _, dup := seen[perm.Resource]; dup {
				return nil, fmt.Errorf("authz: duplicate entry for (%s, %s)", role, perm.Resource)
			}
			seen[perm.Resource] = struct{}{}
			for action := range perm.Actions {
				switch action {
				case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
				default:
					return nil, fmt.Errorf("authz: unknown action %q for (%s, %s)", action, role, perm.Resource)
				}
			}
		}
		entries[role] = perms
	}
	for _, role := range Roles() {
		if _, ok := entries[role]; !ok {
			return nil, fmt.Errorf("authz: role %s has no policy table entry", role)
		}
	}
	return &Table{entries: entries}, nil
}

// MustNewTable is NewTable that panics on error. Intended for the static
// default policy, where a validation failure must abort startup.
func MustNewTable(grants map[Role][]Permission) *Table {
	table, err := NewTable(grants)
	if err != nil {
		panic(err)
	}
	return table
}

// PermissionsFor returns the permissions held by role. It is total: a role
// with no grants yields nil, never an error. Callers must treat the returned
// slice as read-only.
func (t *Table) PermissionsFor(role Role) []Permission {
	return t.entries[role]
}

// Lookup finds the permission entry for (role, resource).
func (t *Table) Lookup(role Role, resource Resource) (Permission, bool) {
	for _, perm := range t.entries[role] {
		if perm.Resource == resource {
			return perm, true
		}
	}
	return Permission{}, false
}

// RolesWithAccess returns every role holding at least one action on any of
// the given resources. The route gate derives its allowed-role lists from
// this, so route gating and fine-grained checks share one source of truth.
func (t *Table) RolesWithAccess(resources ...Resource) []Role {
	var roles []Role
	for _, role := range Roles() {
		for _, resource := range resources {
			perm, ok := t.Lookup(role, resource)
			if ok && len(perm.Actions) > 0 {
				roles = append(roles, role)
				break
			}
		}
	}
	return roles
}
