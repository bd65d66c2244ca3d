package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BrokerMetrics — метрики клиента брокера.
//
// Нулевой указатель допустим: все методы на nil ничего не делают,
// поэтому компоненты могут работать без метрик.
type BrokerMetrics struct {
	connects      *prometheus.CounterVec
	published     *prometheus.CounterVec
	publishErrors *prometheus.CounterVec
	received      *prometheus.CounterVec
	emptyPolls    *prometheus.CounterVec
	decodeErrors  *prometheus.CounterVec
}

// NewBrokerMetrics создаёт и регистрирует метрики в reg.
// Если reg == nil, метрики создаются, но не регистрируются.
func NewBrokerMetrics(reg prometheus.Registerer) *BrokerMetrics {
	m := &BrokerMetrics{
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funcka_broker_connects_total",
			Help: "Broker connection attempts by result",
		}, []string{"result"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funcka_broker_published_total",
			Help: "Messages published by queue and delivery status",
		}, []string{"queue", "status"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funcka_broker_publish_errors_total",
			Help: "Failed publish operations by queue",
		}, []string{"queue"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funcka_broker_received_total",
			Help: "Messages received by queue",
		}, []string{"queue"}),
		emptyPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funcka_broker_empty_polls_total",
			Help: "Polls that found the queue empty",
		}, []string{"queue"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funcka_broker_decode_errors_total",
			Help: "Received messages that failed to decode",
		}, []string{"queue"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.connects,
			m.published,
			m.publishErrors,
			m.received,
			m.emptyPolls,
			m.decodeErrors,
		)
	}

	return m
}

// ConnectAttempt учитывает попытку подключения.
func (m *BrokerMetrics) ConnectAttempt(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.connects.WithLabelValues(result).Inc()
}

// Published учитывает опубликованное сообщение.
func (m *BrokerMetrics) Published(queue, status string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(queue, status).Inc()
}

// PublishFailed учитывает неудачную публикацию.
func (m *BrokerMetrics) PublishFailed(queue string) {
	if m == nil {
		return
	}
	m.publishErrors.WithLabelValues(queue).Inc()
}

// Received учитывает полученное сообщение.
func (m *BrokerMetrics) Received(queue string) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(queue).Inc()
}

// EmptyPoll учитывает пустой опрос очереди.
func (m *BrokerMetrics) EmptyPoll(queue string) {
	if m == nil {
		return
	}
	m.emptyPolls.WithLabelValues(queue).Inc()
}

// DecodeFailed учитывает сообщение, которое не удалось декодировать.
func (m *BrokerMetrics) DecodeFailed(queue string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(queue).Inc()
}
