package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/services"
	"github.com/ammerola/resell-dashboard/internal/pkg/logger"
	"github.com/ammerola/resell-dashboard/test/helpers"
	"github.com/ammerola/resell-dashboard/test/mocks"
)

func newCreator(t *testing.T) (*services.CreateCoordinator[domain.Supplier], *mocks.MockResourceClient[domain.Supplier], *collection.Cache[domain.Supplier]) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient[domain.Supplier](ctrl)
	cache := collection.New[domain.Supplier](domain.KindSuppliers, client, helpers.TestLogger())
	return services.NewCreateCoordinator(cache, helpers.TestLogger()), client, cache
}

func TestCreateCoordinator_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("same_key_creates_once", func(t *testing.T) {
		creator, client, cache := newCreator(t)
		key := services.NewKey()
		draft := *helpers.CreateTestSupplier(func(s *domain.Supplier) { s.ID = 0 })

		client.EXPECT().Create(gomock.Any(), draft).
			DoAndReturn(func(ctx context.Context, d domain.Supplier) (domain.Supplier, error) {
				assert.Equal(t, key, logger.IdempotencyKey(ctx))
				d.ID = 42
				return d, nil
			}).
			Times(1)

		first, err := creator.Submit(ctx, key, draft)
		require.NoError(t, err)
		second, err := creator.Submit(ctx, key, draft)
		require.NoError(t, err)

		assert.Equal(t, int64(42), first.ID)
		assert.Equal(t, first, second)
		assert.True(t, creator.Processed(key))
		assert.Equal(t, []int64{42}, helpers.IDs(cache.Items()))
	})

	t.Run("in_flight_key_is_rejected", func(t *testing.T) {
		creator, client, _ := newCreator(t)
		key := services.NewKey()
		started := make(chan struct{})
		release := make(chan struct{})

		client.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, d domain.Supplier) (domain.Supplier, error) {
				close(started)
				<-release
				d.ID = 7
				return d, nil
			})

		done := make(chan error, 1)
		go func() {
			_, err := creator.Submit(ctx, key, *helpers.CreateTestSupplier())
			done <- err
		}()

		<-started
		_, err := creator.Submit(ctx, key, *helpers.CreateTestSupplier())
		assert.ErrorIs(t, err, domain.ErrDuplicateSubmit)

		close(release)
		require.NoError(t, <-done)
	})

	t.Run("failure_releases_key", func(t *testing.T) {
		creator, client, cache := newCreator(t)
		key := services.NewKey()
		draft := *helpers.CreateTestSupplier()

		gomock.InOrder(
			client.EXPECT().Create(gomock.Any(), draft).Return(domain.Supplier{}, &domain.ValidationError{StatusCode: 422, Message: "email already registered"}),
			client.EXPECT().Create(gomock.Any(), draft).Return(draft, nil),
		)

		_, err := creator.Submit(ctx, key, draft)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.OpMutation))
		assert.False(t, creator.Processed(key))
		assert.Empty(t, cache.Items())

		created, err := creator.Submit(ctx, key, draft)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, created.ID)
		assert.NoError(t, cache.Err())
	})

	t.Run("empty_key_gets_generated", func(t *testing.T) {
		creator, client, _ := newCreator(t)
		client.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, d domain.Supplier) (domain.Supplier, error) {
				assert.NotEmpty(t, logger.IdempotencyKey(ctx))
				return d, nil
			})

		_, err := creator.Submit(ctx, "", *helpers.CreateTestSupplier())
		require.NoError(t, err)
	})
}
