package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError(t *testing.T) {
	t.Run("error message is the message field", func(t *testing.T) {
		err := NewDomainError(CodeValidation, "price must be positive")
		assert.Equal(t, "price must be positive", err.Error())
	})

	t.Run("codes survive wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("create order: %w", NewDomainError(CodeInsufficientStock, "only 5 left"))
		assert.Equal(t, CodeInsufficientStock, ErrorCode(wrapped))
		assert.True(t, IsCode(wrapped, CodeInsufficientStock))
		assert.False(t, IsCode(wrapped, CodeNotFound))
	})

	t.Run("errors.Is matches by code", func(t *testing.T) {
		err := NewNotFoundError("Order not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.Equal(t, "", ErrorCode(errors.New("boom")))
		assert.False(t, IsCode(nil, CodeNotFound))
	})
}

func TestRole(t *testing.T) {
	tests := []struct {
		role       Role
		canApprove bool
		canList    bool
		canOrder   bool
	}{
		{RoleFarmer, false, true, false},
		{RoleBusiness, false, false, true},
		{RoleAdmin, true, true, false},
		{RoleQualityControl, true, false, false},
		{RolePartner, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.True(t, tt.role.IsValid())
			assert.Equal(t, tt.canApprove, tt.role.CanApprove())
			assert.Equal(t, tt.canList, tt.role.CanListProducts())
			assert.Equal(t, tt.canOrder, tt.role.CanPlaceOrders())
		})
	}

	t.Run("parse is case insensitive", func(t *testing.T) {
		r, err := ParseRole(" quality_control ")
		require.NoError(t, err)
		assert.Equal(t, RoleQualityControl, r)

		_, err = ParseRole("GUEST")
		assert.True(t, IsCode(err, CodeValidation))
	})
}

func TestNewActor(t *testing.T) {
	_, err := NewActor(uuid.Nil, RoleFarmer)
	assert.True(t, IsCode(err, CodeUnauthorized))

	_, err = NewActor(uuid.New(), Role("NOBODY"))
	assert.True(t, IsCode(err, CodeUnauthorized))

	a, err := NewActor(uuid.New(), RoleBusiness)
	require.NoError(t, err)
	assert.NoError(t, a.Validate())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, items, Paginate(items, Pagination{}))
	assert.Equal(t, []int{3, 4}, Paginate(items, Pagination{Page: 2, PageSize: 2}))
	assert.Equal(t, []int{5}, Paginate(items, Pagination{Page: 3, PageSize: 2}))
	assert.Empty(t, Paginate(items, Pagination{Page: 4, PageSize: 2}))
}

func TestRetryOnConflict(t *testing.T) {
	t.Run("stops on success", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), 5, func() error {
			calls++
			if calls < 3 {
				return ErrConcurrencyConflict
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns other errors immediately", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), 5, func() error {
			calls++
			return NewValidationError("bad")
		})
		assert.True(t, IsCode(err, CodeValidation))
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after the budget", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), 2, func() error {
			calls++
			return ErrConcurrencyConflict
		})
		assert.True(t, IsCode(err, CodeConcurrencyConflict))
		assert.Equal(t, 2, calls)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryOnConflict(ctx, 5, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
