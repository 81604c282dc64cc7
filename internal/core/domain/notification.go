// internal/core/domain/notification.go
package domain

import "time"

// NotificationLevel mirrors the toast variants the dashboard renders.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient message for the surrounding UI.
type Notification struct {
	Level    NotificationLevel `json:"level"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Resource ResourceKind      `json:"resource,omitempty"`
	Time     time.Time         `json:"time"`
}
