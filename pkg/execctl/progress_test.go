package execctl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameLineParser_ParsesFrameLine(t *testing.T) {
	p := newFrameLineParser()

	progress := p.ParseLine("Frame 5/10 rendered")
	require.NotNil(t, progress)
	assert.Equal(t, 5, progress.Frame)
	assert.Equal(t, 10, progress.TotalFrames)
	assert.InDelta(t, 0.5, progress.DockerProgress, 0.0001)
	assert.InDelta(t, 60.0, progress.OverallPercent, 0.0001)
}

func TestFrameLineParser_IgnoresUnrelatedLines(t *testing.T) {
	p := newFrameLineParser()
	assert.Nil(t, p.ParseLine("Cesium viewer ready"))
}

func TestFrameLineParser_MonotonicRemap(t *testing.T) {
	p := newFrameLineParser()

	last := -1.0
	for i := 1; i <= 10; i++ {
		progress := p.ParseLine(frameLine(i, 10))
		require.NotNil(t, progress)
		assert.Greater(t, progress.OverallPercent, last)
		last = progress.OverallPercent
	}
	assert.InDelta(t, remapHi, last, 0.0001)
}

func frameLine(current, total int) string {
	return fmt.Sprintf("Frame %d/%d", current, total)
}
