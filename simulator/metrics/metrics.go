package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DevicesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lwnphy_devices_total",
		Help: "Total number of devices by state",
	}, []string{"state"})

	GatewaysTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lwnphy_gateways_total",
		Help: "Total number of gateways by state",
	}, []string{"state"})

	TransmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lwnphy_transmissions_total",
		Help: "Total send attempts by outcome",
	}, []string{"outcome"})

	ReceptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lwnphy_receptions_total",
		Help: "Total transmissions handed to a receiver",
	})

	TimeOnAir = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lwnphy_time_on_air_seconds",
		Help:    "Channel occupancy of each transmission",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	ArrivalPower = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lwnphy_arrival_power_dbm",
		Help:    "Attenuated power at the receiver of delivered transmissions",
		Buckets: prometheus.LinearBuckets(-240, 20, 14),
	})

	SchedulerPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lwnphy_scheduler_pending_jobs",
		Help: "Jobs registered on the virtual clock",
	})

	SimulatedTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lwnphy_simulated_time_seconds",
		Help: "Current simulated time",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lwnphy_events_published_total",
		Help: "Total events published by type",
	}, []string{"type"})

	EventSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lwnphy_event_subscriptions_total",
		Help: "Current number of active event subscriptions",
	})
)

// Transmission outcomes used as label values.
const (
	OutcomeDelivered = "delivered"
	OutcomeLost      = "lost"
	OutcomeRejected  = "rejected"
)
