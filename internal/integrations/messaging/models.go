package messaging

// Message исходящее текстовое сообщение
type Message struct {
	ID   string
	To   string
	Text string
}

// payload тело сообщения для шлюза
type payload struct {
	ID   string `json:"id"`
	To   string `json:"to"`
	Text string `json:"text"`
}

func newPayload(msg Message) payload {
	return payload{ID: msg.ID, To: msg.To, Text: msg.Text}
}

// gatewayStatus ответ шлюза на проверку сессии
type gatewayStatus struct {
	Ready bool   `json:"ready"`
	State string `json:"state"`
}

// ErrorResponse модель ошибки от шлюза
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
