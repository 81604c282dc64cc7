package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

func TestOpError_Messages(t *testing.T) {
	cause := &domain.ValidationError{StatusCode: 422, Message: "sku already exists"}

	tests := []struct {
		name string
		err  *domain.OpError
		want string
	}{
		{
			name: "fetch",
			err:  &domain.OpError{Kind: domain.OpFetch, Resource: domain.KindInventory, Err: errors.New("boom")},
			want: "failed to load inventory: boom",
		},
		{
			name: "delete",
			err:  &domain.OpError{Kind: domain.OpDelete, Resource: domain.KindSuppliers, ID: 4, Err: cause},
			want: "failed to delete suppliers 4: sku already exists",
		},
		{
			name: "mutation_without_id",
			err:  &domain.OpError{Kind: domain.OpMutation, Resource: domain.KindInventory, Err: cause},
			want: "failed to save inventory: sku already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUserMessage_PassesServerTextThrough(t *testing.T) {
	err := &domain.OpError{
		Kind: domain.OpMutation,
		Err:  &domain.ValidationError{StatusCode: 400, Message: "Name must be unique"},
	}

	assert.Equal(t, "Name must be unique", domain.UserMessage(err))
	assert.Equal(t, "", domain.UserMessage(nil))
	assert.True(t, domain.IsKind(err, domain.OpMutation))
	assert.False(t, domain.IsKind(err, domain.OpDelete))
}

func TestBulkDeleteError(t *testing.T) {
	netErr := &domain.NetworkError{Method: "DELETE", URL: "/inventory/9", StatusCode: 502, Err: errors.New("bad gateway")}
	err := &domain.BulkDeleteError{
		Failed: map[int64]error{
			9: netErr,
			2: &domain.ValidationError{StatusCode: 409, Message: "in use"},
		},
		RolledBack: []int64{2, 9},
	}

	assert.Equal(t, []int64{2, 9}, err.FailedIDs())
	assert.Equal(t, "2 of the selected deletes failed (ids 2, 9)", err.Error())

	var target *domain.NetworkError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 502, target.StatusCode)
}
