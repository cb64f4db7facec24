package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carebridge/telemed-backend/pkg/geo"
)

func TestDistance_SamePoint(t *testing.T) {
	d := geo.Distance(19.0, 72.8, 19.0, 72.8)
	assert.Equal(t, 0.0, d)
}

func TestDistance_KnownPoints(t *testing.T) {
	// London (Big Ben) to New York (Statue of Liberty)
	d := geo.Distance(51.5007, -0.1246, 40.6892, -74.0445)
	assert.InDelta(t, 5575, d, 10)
}

func TestDistance_ShortRange(t *testing.T) {
	// Two points in Mumbai about 7.7 km apart
	d := geo.Distance(19.0, 72.8, 19.05, 72.85)
	assert.InDelta(t, 7.66, d, 0.1)
}

func TestDistance_Symmetric(t *testing.T) {
	d1 := geo.Distance(19.0, 72.8, 28.6, 77.2)
	d2 := geo.Distance(28.6, 77.2, 19.0, 72.8)
	assert.InDelta(t, d1, d2, 1e-9)
}
