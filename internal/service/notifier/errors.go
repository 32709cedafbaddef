package notifier

import "errors"

// ErrNoPhone возвращается, когда у клиента не указан телефон
var ErrNoPhone = errors.New("customer has no phone number")
