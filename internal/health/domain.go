package health

import "time"

// Metric is one body measurement taken for a member.
type Metric struct {
	ID         string
	MemberID   string
	RecordedBy string
	RecordedAt time.Time
	WeightKg   float64
	HeightCm   float64
	BodyFatPct float64
	CoachNotes string
}

// Observation is a private note a coach keeps about a member. These never
// reach the member or the administrative staff.
type Observation struct {
	ID        string
	MemberID  string
	CoachID   string
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func metricRecord(m Metric) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"memberId":   m.MemberID,
		"recordedBy": m.RecordedBy,
		"recordedAt": m.RecordedAt,
		"weightKg":   m.WeightKg,
		"heightCm":   m.HeightCm,
		"bodyFatPct": m.BodyFatPct,
		"coachNotes": m.CoachNotes,
	}
}

func observationRecord(o Observation) map[string]any {
	return map[string]any{
		"id":        o.ID,
		"memberId":  o.MemberID,
		"coachId":   o.CoachID,
		"note":      o.Note,
		"createdAt": o.CreatedAt,
	}
}
