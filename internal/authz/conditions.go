package authz

// IsOwner reports whether the caller owns the target record. Every "only own
// data" rule in the application goes through this one comparison; services
// that need a pure ownership check call it directly instead of duplicating
// the equality.
func IsOwner(callerID, targetOwnerID string) bool {
	return callerID != "" && callerID == targetOwnerID
}

// Holds evaluates the condition against a request context. Semantics are
// conjunctive: every present key must hold, an absent key is unconstrained.
// A nil condition always holds.
func (c *Condition) Holds(ctx Context) bool {
	if c == nil {
		return true
	}
	if c.OwnData {
		// Absence of a target is not proof of ownership: fail closed.
		if ctx.TargetID == "" || !IsOwner(ctx.CallerID, ctx.TargetID) {
			return false
		}
	}
	if len(c.TargetRoleIn) > 0 && ctx.TargetOwnerRole != "" {
		found := false
		for _, role := range c.TargetRoleIn {
			if role == ctx.TargetOwnerRole {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	// ExcludeFields is consumed by redaction only; it never gates.
	return true
}
