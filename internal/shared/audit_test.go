package shared

import (
	"testing"
	"time"
)

func TestAuditLogStampsZeroTime(t *testing.T) {
	before := time.Now().UTC()
	got := AuditLog{Action: "account.create", Entity: "member_account", EntityID: "m1"}.stamped()
	if got.At.IsZero() {
		t.Fatal("expected occurred_at to be stamped")
	}
	if got.At.Before(before) {
		t.Fatalf("stamp %v precedes test start %v", got.At, before)
	}
}

func TestAuditLogKeepsExplicitTime(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	got := AuditLog{Action: "account.deactivate", Entity: "member_account", EntityID: "m1", At: at}.stamped()
	if !got.At.Equal(at) {
		t.Fatalf("expected explicit timestamp to survive, got %v", got.At)
	}
}
