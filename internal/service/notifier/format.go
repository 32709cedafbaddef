package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// Kind тип уведомления
type Kind string

const (
	KindCreated       Kind = "created"
	KindCancelled     Kind = "cancelled"
	KindStatusChanged Kind = "status_changed"
	KindReminder      Kind = "reminder"
)

var weekdays = [...]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}

var months = [...]string{"", "января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря"}

// FormatDate "среда, 15 октября 2026"
func FormatDate(date time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", weekdays[date.Weekday()], date.Day(), months[date.Month()], date.Year())
}

// NormalizePhone приводит номер к адресу канала доставки:
// междугородний префикс заменяется кодом страны, "+" и разделители удаляются
func NormalizePhone(phone string, settings Settings) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if settings.TrunkPrefix != "" && strings.HasPrefix(number, settings.TrunkPrefix) &&
		!strings.HasPrefix(strings.TrimSpace(phone), "+") {
		number = settings.CountryCode + strings.TrimPrefix(number, settings.TrunkPrefix)
	}

	return number + settings.AddressSuffix
}

func details(v *domain.NotificationView) string {
	complaint := "-"
	if v.Complaint != nil && strings.TrimSpace(*v.Complaint) != "" {
		complaint = *v.Complaint
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔧 Услуга: %s\n", v.ServiceName)
	fmt.Fprintf(&b, "📅 Дата: %s\n", FormatDate(v.Date))
	fmt.Fprintf(&b, "⏰ Время: %s\n", v.Time)
	fmt.Fprintf(&b, "🏍️ Мотоцикл: %s\n", strings.TrimSpace(v.VehicleBrand+" "+v.VehicleModel))
	fmt.Fprintf(&b, "📝 Жалоба: %s\n", complaint)
	return b.String()
}

// CreatedMessage сообщение о новом бронировании
func CreatedMessage(v *domain.NotificationView) string {
	payment := v.PaymentMethod
	if payment == "" {
		payment = "не выбран"
	}
	return fmt.Sprintf("Здравствуйте, %s! Запись оформлена ✅\n\n%s💳 Оплата: %s\n\nЕсли есть вопросы, свяжитесь с нами.",
		v.CustomerName, details(v), payment)
}

// CancelledMessage сообщение об отмене клиентом
func CancelledMessage(v *domain.NotificationView) string {
	return fmt.Sprintf("Здравствуйте, %s! Ваша запись *отменена* ❌\n\n%s\nЕсли вы этого не делали, срочно свяжитесь с администратором.",
		v.CustomerName, details(v))
}

// StatusChangedMessage сообщение о смене статуса оператором
func StatusChangedMessage(v *domain.NotificationView, status domain.Status) string {
	var tail string
	switch status {
	case domain.StatusProcessing:
		tail = "📌 Запись подтверждена, мотоцикл скоро возьмут в работу."
	case domain.StatusCompleted:
		tail = "✅ Обслуживание завершено. Можно забирать мотоцикл. Спасибо!"
	case domain.StatusCancelled:
		tail = "❌ Запись отменена администратором. Если это ошибка, свяжитесь с нами."
	default:
		tail = fmt.Sprintf("Текущий статус: %s", status)
	}
	return fmt.Sprintf("🔔 Здравствуйте, %s! Статус записи изменен.\n\n%s\n%s", v.CustomerName, details(v), tail)
}

// ReminderMessage напоминание о визите накануне
func ReminderMessage(v *domain.NotificationView) string {
	return fmt.Sprintf("⏰ Здравствуйте, %s! Напоминаем о записи на завтра.\n\n%s\nЖдем вас!", v.CustomerName, details(v))
}
