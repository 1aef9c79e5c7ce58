package authz

import "testing"

func TestIsOwner(t *testing.T) {
	cases := []struct {
		name     string
		caller   string
		owner    string
		expected bool
	}{
		{"same id", "u1", "u1", true},
		{"different id", "u1", "u2", false},
		{"empty caller", "", "u2", false},
		{"both empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOwner(tc.caller, tc.owner); got != tc.expected {
				t.Fatalf("IsOwner(%q, %q) = %v, want %v", tc.caller, tc.owner, got, tc.expected)
			}
		})
	}
}

func TestHolds_NilCondition(t *testing.T) {
	var cond *Condition
	if !cond.Holds(Context{}) {
		t.Fatalf("nil condition must hold")
	}
}

func TestHolds_EmptyCondition(t *testing.T) {
	cond := &Condition{}
	if !cond.Holds(Context{CallerID: "u1"}) {
		t.Fatalf("condition with no keys must hold")
	}
}

func TestHolds_OwnDataFailsClosedWithoutTarget(t *testing.T) {
	cond := &Condition{OwnData: true}
	// Missing target id is never proof of ownership, regardless of caller.
	if cond.Holds(Context{CallerID: "u1"}) {
		t.Fatalf("ownData with no target must deny")
	}
}

func TestHolds_OwnData(t *testing.T) {
	cond := &Condition{OwnData: true}
	if !cond.Holds(Context{CallerID: "u1", TargetID: "u1"}) {
		t.Fatalf("caller owning target must pass")
	}
	if cond.Holds(Context{CallerID: "u1", TargetID: "u2"}) {
		t.Fatalf("caller not owning target must fail")
	}
}

func TestHolds_TargetRoleUnconstrainedWhenAbsent(t *testing.T) {
	cond := &Condition{TargetRoleIn: []Role{RoleMember}}
	// The caller is responsible for supplying the target owner role when the
	// condition matters; absence leaves the key unconstrained.
	if !cond.Holds(Context{CallerID: "u1"}) {
		t.Fatalf("absent target owner role must be unconstrained")
	}
}

func TestHolds_TargetRoleMembership(t *testing.T) {
	cond := &Condition{TargetRoleIn: []Role{RoleStaff, RoleMember}}
	if !cond.Holds(Context{TargetOwnerRole: RoleMember}) {
		t.Fatalf("target role in list must pass")
	}
	if cond.Holds(Context{TargetOwnerRole: RoleCoach}) {
		t.Fatalf("target role outside list must fail")
	}
}

func TestHolds_Conjunctive(t *testing.T) {
	cond := &Condition{OwnData: true, TargetRoleIn: []Role{RoleMember}}
	if !cond.Holds(Context{CallerID: "u1", TargetID: "u1", TargetOwnerRole: RoleMember}) {
		t.Fatalf("both keys satisfied must pass")
	}
	if cond.Holds(Context{CallerID: "u1", TargetID: "u1", TargetOwnerRole: RoleStaff}) {
		t.Fatalf("ownership alone must not satisfy both keys")
	}
	if cond.Holds(Context{CallerID: "u1", TargetID: "u2", TargetOwnerRole: RoleMember}) {
		t.Fatalf("target role alone must not satisfy both keys")
	}
}

func TestHolds_ExcludeFieldsNeverGates(t *testing.T) {
	cond := &Condition{ExcludeFields: []string{"cpf", "address"}}
	if !cond.Holds(Context{}) {
		t.Fatalf("excludeFields is redaction metadata, not a gate")
	}
}
