package authz

// Engine is the single entry point services and transport adapters use for
// authorization decisions. All evaluation is synchronous, constant time, and
// free of side effects; the engine never logs, persists, or mutates anything
// it does not own.
type Engine struct {
	table *Table
}

// NewEngine builds an Engine over the given policy table.
func NewEngine(table *Table) *Engine {
	return &Engine{table: table}
}

// Table exposes the underlying policy table, read-only.
func (e *Engine) Table() *Table {
	return e.table
}

// Can reports whether role may perform action on resource given ctx. Unknown
// resources and actions are ordinary denials, never errors. MASTER flows
// through the same path as everyone else; its table rows simply grant
// everything.
func (e *Engine) Can(role Role, action Action, resource Resource, ctx Context) bool {
	perm, ok := e.table.Lookup(role, resource)
	if !ok {
		return false
	}
	if !perm.Actions.Has(action) {
		return false
	}
	return perm.Conditions.Holds(ctx)
}

// Authorize is Can with a raised failure: it returns nil on allow and a
// *PermissionError on deny.
func (e *Engine) Authorize(role Role, action Action, resource Resource, ctx Context) error {
	if e.Can(role, action, resource, ctx) {
		return nil
	}
	return &PermissionError{Role: role, Action: action, Resource: resource}
}

// ExcludedFields returns the field names stripped from read results of
// resource for role. ok is false when the role holds no read permission at
// all; that is "no access", not "no restriction", and callers must treat it
// as a denial.
func (e *Engine) ExcludedFields(role Role, resource Resource) (fields []string, ok bool) {
	perm, found := e.table.Lookup(role, resource)
	if !found || !perm.Actions.Has(ActionRead) {
		return nil, false
	}
	if perm.Conditions == nil {
		return nil, true
	}
	return perm.Conditions.ExcludeFields, true
}

// Redact returns a shallow copy of record with the role's excluded fields
// removed. The input is never mutated and redaction is idempotent. A role
// without read access gets an empty record.
func (e *Engine) Redact(role Role, resource Resource, record map[string]any) map[string]any {
	excluded, ok := e.ExcludedFields(role, resource)
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(record))
	for key, value := range record {
		out[key] = value
	}
	for _, field := range excluded {
		delete(out, field)
	}
	return out
}

// RedactAll applies Redact to each record in order.
func (e *Engine) RedactAll(role Role, resource Resource, records []map[string]any) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, record := range records {
		out[i] = e.Redact(role, resource, record)
	}
	return out
}
