package metrics

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/gemwalletcom/swapper/internal/swapper"
)

func TestSwapperMetrics(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	RegisterMetrics([]string{ServiceSwapper}, logger)
	// second registration is tolerated
	RegisterMetrics([]string{ServiceSwapper}, logger)

	m := NewSwapperMetrics()

	before := testutil.ToFloat64(providerQuotesTotal.WithLabelValues("thorchain", "timeout"))
	m.ObserveProviderQuote("thorchain", 2*time.Second, swapper.NewError(swapper.KindTimeout, "slow"))
	m.ObserveProviderQuote("thorchain", time.Second, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(providerQuotesTotal.WithLabelValues("thorchain", "timeout")))

	beforeRounds := testutil.ToFloat64(quoteRoundsTotal.WithLabelValues("no_quote_available"))
	m.ObserveQuoteRound(0, swapper.ErrNoQuoteAvailable)
	assert.Equal(t, beforeRounds+1, testutil.ToFloat64(quoteRoundsTotal.WithLabelValues("no_quote_available")))

	m.ObserveBuildTransaction("oneinch", errors.New("untyped"))
	assert.Equal(t, float64(1), testutil.ToFloat64(buildTransactionsTotal.WithLabelValues("oneinch", "unknown")))
}
