package store

// PlatformBooking represents a single booking record from the platform API.
type PlatformBooking struct {
	ID           int64  `json:"id"`
	Reference    string `json:"reference"`
	CustomerName string `json:"customerName"`
	Postcode     string `json:"postcode"`
	ServiceType  string `json:"serviceType"`
	Status       string `json:"status"`
}
