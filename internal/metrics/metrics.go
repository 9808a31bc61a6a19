package metrics

import (
	"net/http"
	"time"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор Prometheus-метрик симуляции.
// Все методы безопасны для nil-получателя: хост может работать без метрик.
type Metrics struct {
	climateUpdates   prometheus.Counter
	climateDuration  prometheus.Histogram
	regions          prometheus.Gauge
	assemblyAttempts *prometheus.CounterVec
	controllers      prometheus.Gauge
	structureEvents  *prometheus.CounterVec
	syncBatches      *prometheus.CounterVec
	storeOps         *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в reg (nil: prometheus.DefaultRegisterer)
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		climateUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "greenhouse",
			Subsystem: "climate",
			Name:      "updates_total",
			Help:      "Число выполненных обновлений климата регионов.",
		}),
		climateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "greenhouse",
			Subsystem: "climate",
			Name:      "update_duration_seconds",
			Help:      "Длительность одного тика планировщика климата.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "greenhouse",
			Subsystem: "climate",
			Name:      "regions",
			Help:      "Количество регионов под управлением планировщика.",
		}),
		assemblyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "greenhouse",
			Subsystem: "multiblock",
			Name:      "assembly_attempts_total",
			Help:      "Попытки сборки конструкций по результату.",
		}, []string{"result"}),
		controllers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "greenhouse",
			Subsystem: "multiblock",
			Name:      "controllers",
			Help:      "Количество собранных контроллеров.",
		}),
		structureEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "greenhouse",
			Subsystem: "multiblock",
			Name:      "events_total",
			Help:      "Структурные события по типу.",
		}, []string{"type"}),
		syncBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "greenhouse",
			Subsystem: "sync",
			Name:      "batches_total",
			Help:      "Пакеты синхронизации по направлению.",
		}, []string{"direction"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "greenhouse",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Операции хранилища записей.",
		}, []string{"op", "result"}),
	}

	reg.MustRegister(
		m.climateUpdates, m.climateDuration, m.regions,
		m.assemblyAttempts, m.controllers, m.structureEvents,
		m.syncBatches, m.storeOps,
	)
	return m
}

// ClimateUpdated учитывает обновление региона
func (m *Metrics) ClimateUpdated() {
	if m == nil {
		return
	}
	m.climateUpdates.Inc()
}

// ObserveTick фиксирует длительность тика планировщика
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.climateDuration.Observe(d.Seconds())
}

// SetRegions задаёт число регионов
func (m *Metrics) SetRegions(n int) {
	if m == nil {
		return
	}
	m.regions.Set(float64(n))
}

// AssemblyAttempt учитывает попытку сборки (result: assembled | failed)
func (m *Metrics) AssemblyAttempt(result string) {
	if m == nil {
		return
	}
	m.assemblyAttempts.WithLabelValues(result).Inc()
}

// SetControllers задаёт число собранных контроллеров
func (m *Metrics) SetControllers(n int) {
	if m == nil {
		return
	}
	m.controllers.Set(float64(n))
}

// StructureEvent учитывает структурное событие
func (m *Metrics) StructureEvent(eventType string) {
	if m == nil {
		return
	}
	m.structureEvents.WithLabelValues(eventType).Inc()
}

// SyncBatch учитывает пакет синхронизации (direction: out | in)
func (m *Metrics) SyncBatch(direction string) {
	if m == nil {
		return
	}
	m.syncBatches.WithLabelValues(direction).Inc()
}

// StoreOp учитывает операцию хранилища
func (m *Metrics) StoreOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

// StartHTTP запускает HTTP-эндпоинт /metrics для указанного gatherer.
// Метод неблокирующий: сервер стартует в отдельной горутине.
func StartHTTP(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
