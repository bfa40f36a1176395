package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineM_ZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, haversineM(10, 20, 10, 20))
}

func TestHaversineM_KnownDistance(t *testing.T) {
	// Roughly 1 degree of latitude is ~111km.
	d := haversineM(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 500)
}
