package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceHelpers(t *testing.T) {
	hours := []float64{0, 1.5, 0, 2.25}
	nonZero := func(h float64) bool { return h > 0 }

	assert.Equal(t, []float64{1.5, 2.25}, Filter(hours, nonZero))
	assert.Equal(t, 2, Count(hours, nonZero))
	assert.True(t, Any(hours, nonZero))
	assert.False(t, Any([]float64{}, nonZero))
	assert.InDelta(t, 3.75, SumBy(hours, func(h float64) float64 { return h }), 1e-9)
	assert.Equal(t, []bool{false, true, false, true}, Map(hours, nonZero))
	assert.Empty(t, Filter[float64](nil, nonZero))
}
