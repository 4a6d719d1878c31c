package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "duplicate key violation",
			err:  &pq.Error{Code: "23505", Constraint: "orders_authorization_id_key"},
			want: true,
		},
		{
			name: "wrapped duplicate key violation",
			err:  errorsJoin(&pq.Error{Code: "23505"}),
			want: true,
		},
		{
			name: "other pq error",
			err:  &pq.Error{Code: "53300"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("insert order"), err)
}

func TestPostgresOrderRepository_Create_Integration(t *testing.T) {
	t.Skip("integration test - requires database")
}

func TestPostgresOrderRepository_FindByAuthorizationID_Integration(t *testing.T) {
	t.Skip("integration test - requires database")
}
