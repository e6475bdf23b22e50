package domain

import "time"

// Destination groups packages under a named region for browsing.
// PackageRefs holds package ids across both catalog stores.
type Destination struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Region      string    `json:"region,omitempty"`
	PackageRefs []string  `json:"package_refs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
