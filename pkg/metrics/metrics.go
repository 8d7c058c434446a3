package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-коллекторов сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBOpenConns     *prometheus.GaugeVec
	DBInUseConns    *prometheus.GaugeVec
	DBIdleConns     *prometheus.GaugeVec
	DBWaitCount     *prometheus.GaugeVec

	BookingsCreated      *prometheus.CounterVec
	SlotConflicts        *prometheus.CounterVec
	PaymentsConfirmed    *prometheus.CounterVec
	AIAnalyses           *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	AvailabilityCacheHit *prometheus.CounterVec

	service string
}

// New создает и регистрирует коллекторы в prometheus.DefaultRegisterer
func New(service string) *Metrics {
	return NewWithRegisterer(service, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает коллекторы и регистрирует их в переданном registerer
func NewWithRegisterer(service string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: service,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),
		DBOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),
		DBInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),
		DBIdleConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),
		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Number of bookings created",
		}, []string{"service"}),
		SlotConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_slot_conflicts_total",
			Help: "Number of booking attempts rejected because the slot is taken",
		}, []string{"service"}),
		PaymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_payments_confirmed_total",
			Help: "Number of confirmed payments",
		}, []string{"service"}),
		AIAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_ai_analyses_total",
			Help: "Number of AI analyses by result",
		}, []string{"service", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_notifications_total",
			Help: "Number of SMS notifications by result",
		}, []string{"service", "result"}),
		AvailabilityCacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_cache_requests_total",
			Help: "Availability cache lookups by result",
		}, []string{"service", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConns,
		m.DBInUseConns,
		m.DBIdleConns,
		m.DBWaitCount,
		m.BookingsCreated,
		m.SlotConflicts,
		m.PaymentsConfirmed,
		m.AIAnalyses,
		m.Notifications,
		m.AvailabilityCacheHit,
	)

	return m
}

// Service имя сервиса, которым помечаются метрики
func (m *Metrics) Service() string {
	if m == nil {
		return ""
	}
	return m.service
}

// ObserveHTTPRequest учитывает обработанный HTTP-запрос
// path - шаблон маршрута, а не фактический URL, чтобы не раздувать кардинальность
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.service, method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncBookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(m.service).Inc()
}

func (m *Metrics) IncSlotConflict() {
	if m == nil {
		return
	}
	m.SlotConflicts.WithLabelValues(m.service).Inc()
}

func (m *Metrics) IncPaymentConfirmed() {
	if m == nil {
		return
	}
	m.PaymentsConfirmed.WithLabelValues(m.service).Inc()
}

// ObserveAIAnalysis учитывает результат AI-анализа
func (m *Metrics) ObserveAIAnalysis(ok bool) {
	if m == nil {
		return
	}
	m.AIAnalyses.WithLabelValues(m.service, resultLabel(ok)).Inc()
}

// ObserveNotification учитывает результат отправки SMS
func (m *Metrics) ObserveNotification(ok bool) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(m.service, resultLabel(ok)).Inc()
}

// ObserveCacheLookup учитывает попадание или промах кеша доступности
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.AvailabilityCacheHit.WithLabelValues(m.service, result).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
