package execctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryMonitor_SummaryEmpty(t *testing.T) {
	m := NewMemoryMonitor(1, 0, 0, 0, 0, nil)
	summary := m.Summary()

	assert.Equal(t, 0, summary.SampleCount)
	assert.Equal(t, TrendStable, summary.FinalTrend)
}

func TestMemoryMonitor_SummaryAggregatesSamples(t *testing.T) {
	m := NewMemoryMonitor(1, 0, 100, 200, 0, nil)
	m.samples.add(MemorySample{Timestamp: time.Now(), RSSMB: 50})
	m.samples.add(MemorySample{Timestamp: time.Now(), RSSMB: 150})
	m.samples.add(MemorySample{Timestamp: time.Now(), RSSMB: 250})

	summary := m.Summary()

	assert.Equal(t, 3, summary.SampleCount)
	assert.Equal(t, 250.0, summary.PeakRSSMB)
	assert.Equal(t, 1, summary.WarningCount)
	assert.Equal(t, 1, summary.CriticalCount)
}

func TestSampleRing_EvictsOldestWhenFull(t *testing.T) {
	r := newSampleRing(2)
	r.add(MemorySample{RSSMB: 1})
	r.add(MemorySample{RSSMB: 2})
	r.add(MemorySample{RSSMB: 3})

	ordered := r.ordered()
	assert.Equal(t, []float64{2, 3}, []float64{ordered[0].RSSMB, ordered[1].RSSMB})
}

func TestMemoryMonitor_TrendIncreasing(t *testing.T) {
	var samples []MemorySample
	for i := 0; i < trendWindowSize; i++ {
		samples = append(samples, MemorySample{RSSMB: 100})
	}
	for i := 0; i < trendWindowSize; i++ {
		samples = append(samples, MemorySample{RSSMB: 200})
	}

	assert.Equal(t, TrendIncreasing, trendOf(samples))
}

func TestMemoryMonitor_TrendStableWithFewSamples(t *testing.T) {
	assert.Equal(t, TrendStable, trendOf([]MemorySample{{RSSMB: 100}}))
}
