package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

func respond(t *testing.T, err error) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	RespondError(rec, err)
	body := map[string]string{}
	if decodeErr := json.NewDecoder(rec.Body).Decode(&body); decodeErr != nil {
		t.Fatalf("decode body: %v", decodeErr)
	}
	return rec.Code, body
}

func TestRespondError_Unauthenticated(t *testing.T) {
	code, body := respond(t, authz.ErrUnauthenticated)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if body["error"] != "UNAUTHENTICATED" || body["message"] != "" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRespondError_PermissionDenied(t *testing.T) {
	err := &authz.PermissionError{Role: authz.RoleMember, Action: authz.ActionRead, Resource: authz.ResourceFinancial}
	code, body := respond(t, fmt.Errorf("load invoice: %w", err))
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if body["error"] != "INSUFFICIENT_PERMISSIONS" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["message"] != "member not permitted to read financial" {
		t.Fatalf("unexpected message: %q", body["message"])
	}
}

func TestRespondError_DomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{shared.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{fmt.Errorf("member email: %w", shared.ErrValidation), http.StatusBadRequest, "VALIDATION_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		code, body := respond(t, tc.err)
		if code != tc.status || body["error"] != tc.code {
			t.Fatalf("err %v: got %d %v", tc.err, code, body)
		}
	}
}
