// internal/core/domain/resource.go
package domain

// Resource is a server-owned record the dashboard caches and projects.
// Implementations are plain value types.
type Resource interface {
	// ResourceID returns the server-assigned identifier.
	ResourceID() int64
	// ResourceCategory returns the category and false when none is set.
	ResourceCategory() (string, bool)
	// SearchFields returns the free-text fields matched by search.
	SearchFields() []string
}

// ResourceKind names the remote collection a resource lives in.
type ResourceKind string

const (
	KindInventory ResourceKind = "inventory"
	KindSuppliers ResourceKind = "suppliers"
)
