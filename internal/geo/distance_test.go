package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		expected               float64
		tolerance              float64
	}{
		{
			name: "identical points",
			lat1: 37.7749, lng1: -122.4194,
			lat2: 37.7749, lng2: -122.4194,
			expected:  0,
			tolerance: 0.001,
		},
		{
			name: "one degree of latitude is about 111 km",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			expected:  111195,
			tolerance: 100,
		},
		{
			name: "short hop across the lot",
			lat1: 37.7749, lng1: -122.4194,
			lat2: 37.7750, lng2: -122.4194,
			expected:  11.1,
			tolerance: 0.5,
		},
		{
			name: "SFO to LAX",
			lat1: 37.6213, lng1: -122.3790,
			lat2: 33.9416, lng2: -118.4085,
			expected:  543000,
			tolerance: 5000,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
			assert.InDelta(t, tc.expected, got, tc.tolerance)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	d1 := Distance(37.7749, -122.4194, 37.7751, -122.4196)
	d2 := Distance(37.7751, -122.4196, 37.7749, -122.4194)
	assert.InDelta(t, d1, d2, 1e-9)
}
