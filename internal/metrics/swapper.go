package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gemwalletcom/swapper/internal/swapper"
)

var (
	providerQuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "quotes_total",
			Help:      "Total number of provider quote calls",
		},
		[]string{"provider", "status"}, // success or error kind
	)

	providerQuoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "quote_duration_seconds",
			Help:      "Provider quote latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"provider"},
	)

	quoteRoundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "rounds_total",
			Help:      "Total number of quote rounds",
		},
		[]string{"status"},
	)

	quoteRoundQuotes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "round_quotes",
			Help:      "Number of usable quotes per successful round",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		},
	)

	buildTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "build_transactions_total",
			Help:      "Total number of transaction builds",
		},
		[]string{"provider", "status"},
	)
)

const statusSuccess = "success"

// SwapperMetrics records swapper events into the package collectors.
type SwapperMetrics struct{}

var _ swapper.Metrics = (*SwapperMetrics)(nil)

func NewSwapperMetrics() *SwapperMetrics {
	return &SwapperMetrics{}
}

func (m *SwapperMetrics) ObserveProviderQuote(provider swapper.ProviderID, duration time.Duration, err error) {
	providerQuotesTotal.WithLabelValues(string(provider), status(err)).Inc()
	providerQuoteDuration.WithLabelValues(string(provider)).Observe(duration.Seconds())
}

func (m *SwapperMetrics) ObserveQuoteRound(quotes int, err error) {
	quoteRoundsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		quoteRoundQuotes.Observe(float64(quotes))
	}
}

func (m *SwapperMetrics) ObserveBuildTransaction(provider swapper.ProviderID, err error) {
	buildTransactionsTotal.WithLabelValues(string(provider), status(err)).Inc()
}

func status(err error) string {
	if err == nil {
		return statusSuccess
	}
	return swapper.KindOf(err).String()
}
