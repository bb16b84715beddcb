package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated     prometheus.Counter
	ordersCancelled   *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	trackingEvents    prometheus.Counter
	paymentUpdates    prometheus.Counter

	// Счётчики событий outbox
	outboxEvents prometheus.Counter

	// Гистограмма времени доставки: от создания заказа до статуса delivered
	deliveryDuration prometheus.Histogram

	// Gauge активных (не delivered и не cancelled) заказов
	activeOrders prometheus.Gauge
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "freshify_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersCancelled: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "freshify_orders_cancelled_total",
			Help: "Total number of orders cancelled, by actor",
		}, []string{"actor"}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "freshify_order_status_transitions_total",
			Help: "Total number of delivery status transitions, by target status",
		}, []string{"status"}),
		trackingEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "freshify_tracking_events_total",
			Help: "Total number of tracking history entries recorded",
		}),
		paymentUpdates: registerCounter(registerer, prometheus.CounterOpts{
			Name: "freshify_payment_updates_total",
			Help: "Total number of payment webhook updates applied",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "freshify_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		deliveryDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "freshify_delivery_duration_seconds",
			Help:    "Time from order creation to delivery in seconds",
			Buckets: []float64{3600, 7200, 14400, 28800, 57600, 86400, 172800, 345600, 604800},
		}),
		activeOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "freshify_active_orders",
			Help: "Number of orders currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов и число активных.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
	m.activeOrders.Inc()
}

// RecordOrderCancelled увеличивает счётчик отмен с указанием инициатора.
func (m *OrderMetrics) RecordOrderCancelled(actor string) {
	m.ordersCancelled.WithLabelValues(actor).Inc()
	m.activeOrders.Dec()
}

// RecordStatusTransition увеличивает счётчик переходов в целевой статус.
func (m *OrderMetrics) RecordStatusTransition(status string) {
	m.statusTransitions.WithLabelValues(status).Inc()
}

// RecordOrderDelivered уменьшает число активных заказов и записывает время доставки.
func (m *OrderMetrics) RecordOrderDelivered(created, delivered time.Time) {
	m.activeOrders.Dec()
	if delivered.After(created) {
		m.deliveryDuration.Observe(delivered.Sub(created).Seconds())
	}
}

// RecordTrackingEvent увеличивает счётчик записей истории доставки.
func (m *OrderMetrics) RecordTrackingEvent() {
	m.trackingEvents.Inc()
}

// RecordPaymentUpdate увеличивает счётчик применённых платёжных обновлений.
func (m *OrderMetrics) RecordPaymentUpdate() {
	m.paymentUpdates.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
