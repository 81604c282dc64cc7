// internal/core/domain/supplier.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Supplier is a vendor that stocks inventory items.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var _ Resource = Supplier{}

func (s Supplier) ResourceID() int64 { return s.ID }

// ResourceCategory treats an empty category as unset.
func (s Supplier) ResourceCategory() (string, bool) {
	return s.Category, s.Category != ""
}

func (s Supplier) SearchFields() []string {
	return []string{s.Name, s.ContactPerson, s.Email}
}

// Validate performs domain validation on the supplier
func (s *Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if s.Email != "" {
		at := strings.Index(s.Email, "@")
		if at <= 0 || at == len(s.Email)-1 || !strings.Contains(s.Email[at:], ".") {
			return fmt.Errorf("email %q is not valid", s.Email)
		}
	}
	return nil
}
