package repository

import (
    "errors"
    "fmt"
    "testing"

    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
    cases := []struct {
        n    int
        want string
    }{
        {-1, ""},
        {0, ""},
        {1, "?"},
        {2, "?,?"},
        {5, "?,?,?,?,?"},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, placeholders(tc.n), "n=%d", tc.n)
    }
}

func TestLeaseInsertError(t *testing.T) {
    dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'EV1-A1' for key 'uq_lease_slot'"}
    assert.ErrorIs(t, leaseInsertError(dup), ErrLeaseConflict)

    // Wrapped driver errors still map; the losing flow must see the
    // conflict no matter how many layers the error passed through.
    wrapped := fmt.Errorf("create leases: %w", dup)
    assert.ErrorIs(t, leaseInsertError(wrapped), ErrLeaseConflict)

    // Any other driver error passes through unchanged.
    deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
    assert.ErrorIs(t, leaseInsertError(deadlock), deadlock)
    assert.NotErrorIs(t, leaseInsertError(deadlock), ErrLeaseConflict)

    plain := errors.New("connection reset")
    assert.Equal(t, plain, leaseInsertError(plain))
}
