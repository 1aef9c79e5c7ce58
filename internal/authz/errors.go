package authz

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated indicates no valid identity is attached to the request.
// It is distinct from an authorization failure and maps to HTTP 401.
var ErrUnauthenticated = errors.New("authz: unauthenticated")

// PermissionError is the authorization failure raised by Authorize and the
// route gate. The message names role, action and resource; it reveals policy
// shape, not data, so it is safe to expose to clients.
type PermissionError struct {
	Role     Role
	Action   Action
	Resource Resource
}

// Error implements error.
func (e *PermissionError) Error() string {
	switch {
	case e.Action == "" && e.Resource == "":
		return fmt.Sprintf("%s not permitted", e.Role)
	case e.Action == "":
		return fmt.Sprintf("%s not permitted to access %s", e.Role, e.Resource)
	default:
		return fmt.Sprintf("%s not permitted to %s %s", e.Role, e.Action, e.Resource)
	}
}
