// internal/core/ports/resource_client.go
package ports

import (
	"context"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

// ResourceClient is the remote CRUD boundary for one resource kind.
// Calls fail with *domain.NetworkError or *domain.ValidationError.
type ResourceClient[T domain.Resource] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id int64, patch map[string]any) (T, error)
	Delete(ctx context.Context, id int64) error
}
