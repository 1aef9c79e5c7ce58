package billing

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk/internal/shared"
)

func TestMapWriteErrorUniqueViolation(t *testing.T) {
	driverErr := fmt.Errorf("insert invoice: %w", &pgconn.PgError{
		Code:           uniqueViolation,
		ConstraintName: "invoices_member_month_key",
	})
	require.ErrorIs(t, mapWriteError(driverErr), shared.ErrDuplicate)
}

func TestMapWriteErrorPassesThroughOtherErrors(t *testing.T) {
	fk := fmt.Errorf("insert invoice: %w", &pgconn.PgError{Code: "23503"})
	assert.NotErrorIs(t, mapWriteError(fk), shared.ErrDuplicate)

	plain := fmt.Errorf("connection refused")
	assert.Equal(t, plain, mapWriteError(plain))
}
