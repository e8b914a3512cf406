package extraction

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeStrategy(PlatformGeneric, StrategyScrape, nil)
		m.observeStage(StageAcquiring, time.Second)
		m.observeResult(PlatformGeneric, "success")
	})
}

func TestMetricsStrategyOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.observeStrategy(PlatformInstagram, StrategyInstagramOEmbed, NotConfigured("Instagram oEmbed"))
	m.observeStrategy(PlatformInstagram, StrategyScrape, errors.New("blocked"))
	m.observeStrategy(PlatformInstagram, StrategyURLStructure, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("instagram", StrategyInstagramOEmbed, "not_configured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("instagram", StrategyScrape, "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("instagram", StrategyURLStructure, "success")))
}

func TestMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
	assert.NotPanics(t, func() { NewMetrics(nil) })
}
