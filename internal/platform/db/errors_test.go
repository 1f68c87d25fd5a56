package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_code_key"})
	name, ok := UniqueViolation(err)
	require.True(t, ok)
	require.Equal(t, "accounts_code_key", name)

	_, ok = UniqueViolation(errors.New("boom"))
	require.False(t, ok)
	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	require.False(t, ok)
}

func TestSerializationFailure(t *testing.T) {
	require.True(t, SerializationFailure(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})))
	require.False(t, SerializationFailure(&pgconn.PgError{Code: "23505"}))
}
