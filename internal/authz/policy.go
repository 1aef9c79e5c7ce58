package authz

// Field names stripped from read results for restricted roles.
const (
	FieldCPF              = "cpf"
	FieldAddress          = "address"
	FieldEmergencyContact = "emergencyContact"
	FieldInternalNotes    = "internalNotes"
	FieldDiscountReason   = "discountReason"
	FieldCoachNotes       = "coachNotes"
)

// masterGrants builds the MASTER rows: every resource, every action, no
// conditions. The universal override lives here as data so the engine keeps a
// single evaluation path.
func masterGrants() []Permission {
	perms := make([]Permission, 0, len(AllResources()))
	for _, resource := range AllResources() {
		perms = append(perms, Grant(resource, AllActions()...))
	}
	return perms
}

// DefaultTable returns the studio policy. It is the only policy the
// application ships; construction panics on an invariant violation, which
// aborts startup before any request is served.
func DefaultTable() *Table {
	return MustNewTable(map[Role][]Permission{
		RoleMaster: masterGrants(),

		RoleAdmin: {
			Grant(ResourceUsers, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
			Grant(ResourcePersonalData, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
			Grant(ResourceHealthMetrics, ActionRead),
			Grant(ResourceFinancial, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
			Grant(ResourceMonthlyPayment, ActionRead, ActionUpdate),
			// Coach observations stay private to the coaching staff.
			Deny(ResourceCoachObservations),
			Grant(ResourceCheckIns, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
			Grant(ResourceSettings, ActionRead, ActionUpdate),
		},

		RoleStaffManager: {
			GrantIf(ResourceUsers,
				Condition{TargetRoleIn: []Role{RoleStaff, RoleCoach, RoleMember}},
				ActionCreate, ActionRead, ActionUpdate),
			GrantIf(ResourcePersonalData,
				Condition{TargetRoleIn: []Role{RoleStaff, RoleCoach, RoleMember}},
				ActionRead, ActionUpdate),
			Grant(ResourceFinancial, ActionRead),
			Grant(ResourceMonthlyPayment, ActionRead),
			Grant(ResourceCheckIns, ActionRead),
			Grant(ResourceSettings, ActionRead),
		},

		RoleCoach: {
			GrantIf(ResourceUsers, Condition{TargetRoleIn: []Role{RoleMember}}, ActionRead),
			GrantIf(ResourcePersonalData,
				Condition{
					TargetRoleIn:  []Role{RoleMember},
					ExcludeFields: []string{FieldCPF, FieldAddress, FieldEmergencyContact},
				},
				ActionRead),
			GrantIf(ResourceHealthMetrics,
				Condition{TargetRoleIn: []Role{RoleMember}},
				ActionCreate, ActionRead, ActionUpdate, ActionDelete),
			GrantIf(ResourceCoachObservations,
				Condition{TargetRoleIn: []Role{RoleMember}},
				ActionCreate, ActionRead, ActionUpdate, ActionDelete),
			Grant(ResourceCheckIns, ActionRead),
			Grant(ResourceSettings, ActionRead),
		},

		RoleStaff: {
			GrantIf(ResourceUsers, Condition{TargetRoleIn: []Role{RoleMember}}, ActionCreate, ActionRead, ActionUpdate),
			GrantIf(ResourcePersonalData, Condition{TargetRoleIn: []Role{RoleMember}}, ActionCreate, ActionRead, ActionUpdate),
			// Front-desk staff handle payments and check-ins, never body
			// measurements. The empty set is an explicit denial.
			Deny(ResourceHealthMetrics),
			Grant(ResourceFinancial, ActionCreate, ActionRead, ActionUpdate),
			Grant(ResourceMonthlyPayment, ActionRead, ActionUpdate),
			GrantIf(ResourceCheckIns, Condition{TargetRoleIn: []Role{RoleMember}}, ActionCreate, ActionRead),
			Grant(ResourceSettings, ActionRead),
		},

		RoleMember: {
			GrantIf(ResourcePersonalData, Condition{OwnData: true}, ActionRead, ActionUpdate),
			GrantIf(ResourceHealthMetrics,
				Condition{OwnData: true, ExcludeFields: []string{FieldCoachNotes}},
				ActionRead),
			GrantIf(ResourceFinancial,
				Condition{OwnData: true, ExcludeFields: []string{FieldInternalNotes, FieldDiscountReason}},
				ActionRead),
			GrantIf(ResourceMonthlyPayment, Condition{OwnData: true}, ActionRead),
			GrantIf(ResourceCheckIns, Condition{OwnData: true}, ActionCreate, ActionRead),
			Grant(ResourceSettings, ActionRead),
		},
	})
}
