package checkins

import "time"

// CheckIn records one entry of a member through the studio gate.
type CheckIn struct {
	ID           string
	MemberID     string
	RegisteredBy string
	At           time.Time
}

func record(c CheckIn) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"memberId":     c.MemberID,
		"registeredBy": c.RegisteredBy,
		"at":           c.At,
	}
}
