package domain

// Service is a workshop service as seen by the booking engine.
type Service struct {
	ID        int64
	Name      string
	BasePrice int64
	// AllowsSubstitution means the service price is replaced by the selected products.
	AllowsSubstitution bool
}

// Product is a catalog product that can be attached to a service.
type Product struct {
	ID        int64
	ServiceID int64
	Name      string
	Price     int64
}
