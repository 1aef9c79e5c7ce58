package authz

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RoutePolicy is the coarse access declaration attached to a route at
// registration time. A public route short-circuits every check; a non-public
// route with no AllowedRoles admits any authenticated caller.
type RoutePolicy struct {
	Public       bool
	AllowedRoles []Role
}

// DecisionRecorder receives the outcome of each gate decision, typically for
// metrics. The engine itself stays side-effect free; recording happens here,
// at the transport boundary.
type DecisionRecorder interface {
	RecordDecision(scope string, allowed bool)
}

// Gate enforces route policies before requests reach business logic. It is
// deliberately coarse: it sees only the caller's role, never a target record,
// so ownership and target-role conditions are left to service-level
// Authorize calls.
type Gate struct {
	Table    *Table
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// Require builds middleware enforcing the given route policy.
func (g Gate) Require(policy RoutePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.decide(policy, IdentityFromContext(r.Context())); err != nil {
				g.deny(w, r, err)
				return
			}
			g.record(r.URL.Path, true)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles builds middleware admitting the listed roles (plus MASTER).
func (g Gate) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return g.Require(RoutePolicy{AllowedRoles: roles})
}

// RequireResource builds middleware whose allowed-role list is derived from
// the policy table: any role holding at least one action on any of the given
// resources qualifies. Route gating and fine-grained checks therefore share
// one source of truth instead of a second hand-written list per route.
func (g Gate) RequireResource(resources ...Resource) func(http.Handler) http.Handler {
	return g.Require(RoutePolicy{AllowedRoles: g.Table.RolesWithAccess(resources...)})
}

// decide runs the per-request state machine: UNCHECKED → ALLOWED | DENIED,
// terminal. nil means allowed; the error distinguishes authentication from
// authorization failures.
func (g Gate) decide(policy RoutePolicy, ident *Identity) error {
	if policy.Public {
		return nil
	}
	if ident == nil || ident.ID == "" || !ident.Role.Valid() {
		return ErrUnauthenticated
	}
	if len(policy.AllowedRoles) == 0 {
		return nil
	}
	// Route-level gating carries no target context to evaluate conditions
	// against, so MASTER bypasses the declared list here. This is the one
	// special case outside the policy table; it is tested explicitly.
	if ident.Role == RoleMaster {
		return nil
	}
	for _, role := range policy.AllowedRoles {
		if ident.Role == role {
			return nil
		}
	}
	return &PermissionError{Role: ident.Role}
}

func (g Gate) deny(w http.ResponseWriter, r *http.Request, err error) {
	g.record(r.URL.Path, false)
	if err == ErrUnauthenticated {
		writeGateError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "")
		return
	}
	if g.Logger != nil {
		g.Logger.Warn("route denied", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeGateError(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", err.Error())
}

func (g Gate) record(scope string, allowed bool) {
	if g.Recorder != nil {
		g.Recorder.RecordDecision(scope, allowed)
	}
}

type gateErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeGateError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(gateErrorBody{Error: code, Message: message})
}
