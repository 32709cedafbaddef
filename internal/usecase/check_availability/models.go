package check_availability

import "time"

// Request модель запроса загруженности дня
type Request struct {
	Date string // "YYYY-MM-DD"
}

// Response загруженность дня
type Response struct {
	Date      time.Time
	Count     int  // Активные бронирования на дату
	Capacity  int  // Лимит на день
	Available bool // Count < Capacity
}
