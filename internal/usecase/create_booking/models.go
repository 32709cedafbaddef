package create_booking

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID    int64           // ID клиента (из заголовка аутентификации)
	VehicleID     int64           // ID мотоцикла клиента
	ServiceID     int64           // ID услуги
	Date          string          // Дата визита "YYYY-MM-DD"
	Time          string          // Время визита "HH:MM"
	Complaint     *string         // Описание проблемы (опционально)
	PaymentMethod string          // "cash" или безналичный способ
	PaymentProof  *string         // Ссылка на загруженное подтверждение оплаты
	Products      json.RawMessage // Массив [{id, price, quantity?}] или строка с этим массивом
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            int64
	CustomerID    int64
	VehicleID     int64
	ServiceID     int64
	Date          time.Time
	Time          types.TimeString
	Status        domain.Status
	PaymentMethod string
	ServicePrice  int64
	Items         []domain.LineItem
	CreatedAt     time.Time
}

// Settings бизнес-правила создания бронирования
type Settings struct {
	Rules             domain.ScheduleRules
	DailyCapacity     int
	CashPaymentMethod string
	// TrustClientPrices фиксирует цену товара из запроса, иначе из каталога
	TrustClientPrices bool
}

// DefaultSettings правила по умолчанию
func DefaultSettings() Settings {
	return Settings{
		Rules:             domain.DefaultScheduleRules(),
		DailyCapacity:     domain.DefaultDailyCapacity,
		CashPaymentMethod: domain.DefaultCashPaymentMethod,
		TrustClientPrices: true,
	}
}
