package domain

import (
	"strings"
	"time"
)

// Traveler is one member of a booking party.
type Traveler struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Lead captures a booking inquiry against a catalog package. UserID is empty
// for anonymous submitters; anonymity is a first-class case.
type Lead struct {
	ID               string      `json:"id"`
	PackageType      PackageType `json:"package_type"`
	PackageID        string      `json:"package_id"`
	UserID           string      `json:"user_id,omitempty"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	Travelers        []Traveler  `json:"travelers"`
	StartDate        time.Time   `json:"start_date"`
	SpecialRequests  string      `json:"special_requests,omitempty"`
	AlternateContact string      `json:"alternate_contact,omitempty"`
	PriceMax         *float64    `json:"price_max,omitempty"`
	Status           string      `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Validate enforces the submission rules. Resolving the referenced package
// is the caller's job; everything checked here is local to the payload.
func (l *Lead) Validate() error {
	if l == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(l.Name) == "" {
		return NewError(ErrCodeInvalid, "submitter name is required")
	}
	if strings.TrimSpace(l.Email) == "" {
		return NewError(ErrCodeInvalid, "submitter email is required")
	}
	if strings.TrimSpace(l.Phone) == "" {
		return NewError(ErrCodeInvalid, "submitter phone is required")
	}
	if l.PriceMax != nil && *l.PriceMax <= 0 {
		return NewError(ErrCodeInvalid, "price range must be positive")
	}
	if len(l.Travelers) == 0 {
		return NewError(ErrCodeInvalid, "at least one traveler is required")
	}
	for _, t := range l.Travelers {
		if strings.TrimSpace(t.Name) == "" {
			return NewError(ErrCodeInvalid, "every traveler needs a name")
		}
	}
	return nil
}
