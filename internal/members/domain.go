package members

import (
	"time"

	"github.com/fitdesk/fitdesk/internal/authz"
)

// Member represents any person with an account at the studio: members,
// coaches, front-desk staff and administrators alike. The Role field drives
// authorization decisions about records owned by this person.
type Member struct {
	ID               string
	Role             authz.Role
	Name             string
	Email            string
	CPF              string
	Phone            string
	BirthDate        time.Time
	Address          string
	EmergencyContact string
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// profileRecord converts the personal-data view of a member into the generic
// record shape the permission engine redacts. Keys match the policy table's
// excluded field names.
func profileRecord(m Member) map[string]any {
	return map[string]any{
		"id":               m.ID,
		"role":             string(m.Role),
		"name":             m.Name,
		"email":            m.Email,
		"cpf":              m.CPF,
		"phone":            m.Phone,
		"birthDate":        m.BirthDate,
		"address":          m.Address,
		"emergencyContact": m.EmergencyContact,
		"active":           m.Active,
	}
}
