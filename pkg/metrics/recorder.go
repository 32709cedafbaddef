package metrics

// Методы ниже безопасны для nil-получателя: если метрики выключены,
// в сервисы передается (*Metrics)(nil) и вызовы превращаются в no-op.

func (m *Metrics) BookingCreated(paymentMethod string) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(paymentMethod).Inc()
}

func (m *Metrics) BookingRejected(reason string) {
	if m == nil {
		return
	}
	m.BookingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusTransition(from, to, actor string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to, actor).Inc()
}

func (m *Metrics) NotificationSent(kind string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) NotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(kind).Inc()
}

func (m *Metrics) TxRetry(reason string) {
	if m == nil {
		return
	}
	m.DBTxRetries.WithLabelValues(reason).Inc()
}

// ChannelState выставляет 1 для текущего состояния канала и 0 для остальных
func (m *Metrics) ChannelState(current string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.MessagingChannelState.WithLabelValues(s).Set(v)
	}
}
