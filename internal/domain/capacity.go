package domain

// HasCapacity reports whether one more booking fits into a day that already
// has activeCount active bookings.
func HasCapacity(activeCount, capacity int) bool {
	return activeCount < capacity
}

// Availability is the occupancy of a single calendar day.
type Availability struct {
	Count     int
	Capacity  int
	Available bool
}

// NewAvailability builds the occupancy summary for a day.
func NewAvailability(activeCount, capacity int) Availability {
	return Availability{
		Count:     activeCount,
		Capacity:  capacity,
		Available: HasCapacity(activeCount, capacity),
	}
}
