package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "ux_checkouts_tenant_active"}

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "ux_checkouts_tenant_active"))
	assert.False(t, IsUniqueViolation(err, "ux_other"))

	wrapped := fmt.Errorf("create checkout: %w", err)
	assert.True(t, IsUniqueViolation(wrapped, "ux_checkouts_tenant_active"))
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "ux_checkouts_tenant_active"}

	assert.True(t, IsUniqueViolation(err, "ux_checkouts_tenant_active"))
	assert.False(t, IsUniqueViolation(err, "ux_other"))
}

func TestIsUniqueViolationRejectsOtherPgCodes(t *testing.T) {
	// foreign key violation
	err := &pgconn.PgError{Code: "23503", ConstraintName: "fk_refund_checkout"}

	assert.False(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "fk_refund_checkout"))
}

func TestIsUniqueViolationSqliteFallback(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: checkouts.tenant_id")

	assert.True(t, IsUniqueViolation(err, ""))
	// sqlite carries no constraint name, so the name filter cannot apply
	assert.True(t, IsUniqueViolation(err, "ux_checkouts_tenant_active"))
	assert.False(t, IsUniqueViolation(errors.New("database is locked"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
