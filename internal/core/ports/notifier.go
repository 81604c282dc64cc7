// internal/core/ports/notifier.go
package ports

import "github.com/ammerola/resell-dashboard/internal/core/domain"

// Notifier receives user-facing notifications published by the core.
type Notifier interface {
	Publish(n domain.Notification)
}
