// Package authz implements the permission engine: a static policy table
// mapping roles to resource permissions, a condition evaluator, and a
// transport-level route gate. Every protected operation in the application
// goes through this package, either coarsely (route gate) or with a target
// record context (Engine.Authorize).
package authz

// Role is the caller's fixed identity class. The set is closed; there is no
// runtime role creation.
type Role string

const (
	// RoleMaster satisfies every coarse role check unconditionally. The
	// override is expressed as policy data, not as branching in the engine.
	RoleMaster       Role = "master"
	RoleAdmin        Role = "admin"
	RoleStaffManager Role = "staff_manager"
	RoleCoach        Role = "coach"
	RoleStaff        Role = "staff"
	RoleMember       Role = "member"
)

// Roles returns the closed role enum.
func Roles() []Role {
	return []Role{RoleMaster, RoleAdmin, RoleStaffManager, RoleCoach, RoleStaff, RoleMember}
}

// Valid reports whether r belongs to the closed enum.
func (r Role) Valid() bool {
	switch r {
	case RoleMaster, RoleAdmin, RoleStaffManager, RoleCoach, RoleStaff, RoleMember:
		return true
	}
	return false
}

// Action is one of the four operations the policy table grants.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AllActions returns every action in the closed enum.
func AllActions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// Resource names a domain concept governed by the policy table. Resources are
// identifiers, not code types.
type Resource string

const (
	ResourceUsers             Resource = "users"
	ResourcePersonalData      Resource = "personalData"
	ResourceHealthMetrics     Resource = "healthMetrics"
	ResourceFinancial         Resource = "financial"
	ResourceMonthlyPayment    Resource = "financialMonthlyPaymentStatus"
	ResourceCoachObservations Resource = "coachObservationsPrivate"
	ResourceCheckIns          Resource = "checkIns"
	ResourceSettings          Resource = "settings"
)

// AllResources returns every resource the policy table governs.
func AllResources() []Resource {
	return []Resource{
		ResourceUsers,
		ResourcePersonalData,
		ResourceHealthMetrics,
		ResourceFinancial,
		ResourceMonthlyPayment,
		ResourceCoachObservations,
		ResourceCheckIns,
		ResourceSettings,
	}
}

// ActionSet is the set of actions a permission grants. An empty set is an
// explicit "no access" entry, not undefined behaviour.
type ActionSet map[Action]struct{}

// Actions builds an ActionSet from the given actions.
func Actions(actions ...Action) ActionSet {
	set := make(ActionSet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Has reports whether the set contains a.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Condition narrows when a permission applies. All present keys must hold;
// an absent key is unconstrained.
type Condition struct {
	// OwnData requires the caller to own the target record. Evaluation fails
	// closed when no target is supplied.
	OwnData bool
	// TargetRoleIn restricts the role of the target record's owner.
	TargetRoleIn []Role
	// ExcludeFields lists record attributes stripped from read results. It
	// never affects the allow/deny decision.
	ExcludeFields []string
}

// Permission grants a set of actions on one resource, optionally narrowed by
// conditions. A policy table holds at most one Permission per (role, resource).
type Permission struct {
	Resource   Resource
	Actions    ActionSet
	Conditions *Condition
}

// Grant builds an unconditional permission.
func Grant(resource Resource, actions ...Action) Permission {
	return Permission{Resource: resource, Actions: Actions(actions...)}
}

// GrantIf builds a permission narrowed by cond.
func GrantIf(resource Resource, cond Condition, actions ...Action) Permission {
	return Permission{Resource: resource, Actions: Actions(actions...), Conditions: &cond}
}

// Deny builds an explicit no-access entry for resource.
func Deny(resource Resource) Permission {
	return Permission{Resource: resource, Actions: ActionSet{}}
}

// Context carries the per-request facts needed to evaluate conditions. It is
// built fresh for each check and never shared or cached. Empty strings mean
// "absent".
type Context struct {
	CallerID        string
	CallerRole      Role
	TargetID        string
	TargetOwnerRole Role
}
