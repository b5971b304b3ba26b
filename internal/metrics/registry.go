package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// RegisterMetrics registers the runtime collectors plus the collectors of
// each named service. Unknown names are logged and skipped.
func RegisterMetrics(services []string, logger logrus.FieldLogger) {
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	for _, service := range services {
		switch service {
		case ServiceHTTP:
			registerHTTPMetrics(logger)
		case ServiceSwapper:
			registerSwapperMetrics(logger)
		default:
			logger.WithField("service", service).Warn("unknown metrics service")
		}
	}
}

func registerIfNotExists(collector prometheus.Collector, name string, logger logrus.FieldLogger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.WithField("collector", name).Debug("collector already registered")
		} else {
			logger.WithError(err).WithField("collector", name).Error("failed to register collector")
		}
	}
}

func registerHTTPMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(httpRequestsTotal, "http_requests_total", logger)
	registerIfNotExists(httpRequestDuration, "http_request_duration", logger)
	registerIfNotExists(httpRequestsInFlight, "http_requests_in_flight", logger)
	registerIfNotExists(httpErrorsTotal, "http_errors_total", logger)
}

func registerSwapperMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(providerQuotesTotal, "provider_quotes_total", logger)
	registerIfNotExists(providerQuoteDuration, "provider_quote_duration", logger)
	registerIfNotExists(quoteRoundsTotal, "quote_rounds_total", logger)
	registerIfNotExists(quoteRoundQuotes, "quote_round_quotes", logger)
	registerIfNotExists(buildTransactionsTotal, "build_transactions_total", logger)
}
