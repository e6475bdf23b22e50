package transport

// ImageEntry is one slot of a package's desired image list. Existing assets
// carry asset_id/url; new uploads carry filename plus base64 data.
type ImageEntry struct {
	AssetID  string `json:"asset_id,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

type DayPlanRequest struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PackageRequest struct {
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Duration          string           `json:"duration"`
	PriceOnward       *float64         `json:"price_onward"`
	Places            string           `json:"places"`
	Images            []ImageEntry     `json:"images"`
	Highlights        []string         `json:"highlights"`
	Inclusions        []string         `json:"inclusions"`
	Exclusions        []string         `json:"exclusions"`
	Itinerary         []DayPlanRequest `json:"itinerary"`
	AvailabilityStart string           `json:"availability_start"`
	AvailabilityEnd   string           `json:"availability_end"`
}

type TravelerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type LeadRequest struct {
	PackageType      string            `json:"package_type"`
	PackageID        string            `json:"package_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Travelers        []TravelerRequest `json:"travelers"`
	StartDate        string            `json:"start_date"`
	SpecialRequests  string            `json:"special_requests"`
	AlternateContact string            `json:"alternate_contact"`
	PriceMax         *float64          `json:"price_max"`
}

type LeadStatusRequest struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DestinationRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	PackageRefs []string `json:"package_refs"`
}
