package domain

import "time"

// PackageType discriminates which physical store backs a catalog package.
// It is fixed at creation time.
type PackageType string

const (
	PackageDomestic      PackageType = "domestic"
	PackageInternational PackageType = "international"
)

// DayPlan is a single itinerary day.
type DayPlan struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Review is a customer review attached to a package.
type Review struct {
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a free-form remark attached to a package.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Availability is the bookable window of a package.
type Availability struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Package represents a sellable travel package.
type Package struct {
	ID           string       `json:"id"`
	Type         PackageType  `json:"type"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Duration     string       `json:"duration,omitempty"`
	PriceOnward  *float64     `json:"price_onward,omitempty"`
	Places       string       `json:"places,omitempty"`
	Images       []AssetRef   `json:"images"`
	Highlights   []string     `json:"highlights,omitempty"`
	Inclusions   []string     `json:"inclusions,omitempty"`
	Exclusions   []string     `json:"exclusions,omitempty"`
	Itinerary    []DayPlan    `json:"itinerary,omitempty"`
	Availability Availability `json:"availability"`
	Likes        int          `json:"likes"`
	Reviews      []Review     `json:"reviews,omitempty"`
	Comments     []Comment    `json:"comments,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Validate checks the fields a package must carry before it can be stored.
func (p *Package) Validate() error {
	if p == nil || p.Name == "" {
		return ErrInvalidPayload
	}
	if p.PriceOnward != nil && *p.PriceOnward <= 0 {
		return NewError(ErrCodeInvalid, "price must be positive")
	}
	return nil
}
