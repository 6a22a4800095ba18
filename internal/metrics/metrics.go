package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Progression Metrics
var (
	LevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLevelUps,
			Help: HelpTextLevelUps,
		},
	)

	BuildingsUnlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBuildingsUnlocked,
			Help: HelpTextBuildingsUnlocked,
		},
	)

	AreasUnlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAreasUnlocked,
			Help: HelpTextAreasUnlocked,
		},
	)
)

// Construction Metrics
var (
	ProjectsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameProjectsRegistered,
			Help: HelpTextProjectsRegistered,
		},
	)

	ProjectsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameProjectsCompleted,
			Help: HelpTextProjectsCompleted,
		},
	)

	SkipQuestsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSkipQuestsAdded,
			Help: HelpTextSkipQuestsAdded,
		},
	)

	QuestsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameQuestsCompleted,
			Help: HelpTextQuestsCompleted,
		},
	)

	QuestsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameQuestsDeleted,
			Help: HelpTextQuestsDeleted,
		},
	)
)
