package billing

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Invoice is one monthly charge against a member.
type Invoice struct {
	ID             string
	MemberID       string
	ReferenceMonth string
	AmountCents    int64
	DueDate        time.Time
	Status         string
	PaidAt         *time.Time
	InternalNotes  string
	DiscountReason string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MonthlyStatus is the payment summary shown on the member dashboard.
type MonthlyStatus struct {
	MemberID       string
	ReferenceMonth string
	Status         string
	AmountCents    int64
	DueDate        time.Time
	PaidAt         *time.Time
}

// Amounts render in Brazilian format, the studio bills in BRL only.
var brl = message.NewPrinter(language.BrazilianPortuguese)

func formatBRL(cents int64) string {
	return brl.Sprintf("R$ %.2f", float64(cents)/100)
}

func invoiceRecord(inv Invoice) map[string]any {
	rec := map[string]any{
		"id":             inv.ID,
		"memberId":       inv.MemberID,
		"referenceMonth": inv.ReferenceMonth,
		"amountCents":    inv.AmountCents,
		"amount":         formatBRL(inv.AmountCents),
		"dueDate":        inv.DueDate,
		"status":         inv.Status,
		"internalNotes":  inv.InternalNotes,
		"discountReason": inv.DiscountReason,
	}
	if inv.PaidAt != nil {
		rec["paidAt"] = *inv.PaidAt
	}
	return rec
}

func statusRecord(st MonthlyStatus) map[string]any {
	rec := map[string]any{
		"memberId":       st.MemberID,
		"referenceMonth": st.ReferenceMonth,
		"status":         st.Status,
		"amountCents":    st.AmountCents,
		"amount":         formatBRL(st.AmountCents),
		"dueDate":        st.DueDate,
	}
	if st.PaidAt != nil {
		rec["paidAt"] = *st.PaidAt
	}
	return rec
}
