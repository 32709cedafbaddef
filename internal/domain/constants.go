package domain

// Default business rules
const (
	DefaultDailyCapacity     = 10
	DefaultHorizonMonths     = 3
	DefaultOpenTime          = "08:00"
	DefaultCloseTime         = "16:30"
	DefaultCashPaymentMethod = "cash"
	DefaultProductQuantity   = 1
)

// Validation limits
const (
	MaxComplaintLength = 1000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
