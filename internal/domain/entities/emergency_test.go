package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
)

func TestLocation_MapsLink(t *testing.T) {
	tests := []struct {
		name     string
		location entities.Location
		want     string
	}{
		{
			name:     "whole coordinates drop trailing zeros",
			location: entities.Location{Latitude: 19, Longitude: 72.8},
			want:     "https://www.google.com/maps?q=19,72.8",
		},
		{
			name:     "full precision preserved",
			location: entities.Location{Latitude: 19.075983, Longitude: 72.877655},
			want:     "https://www.google.com/maps?q=19.075983,72.877655",
		},
		{
			name:     "negative coordinates",
			location: entities.Location{Latitude: -33.8688, Longitude: 151.2093},
			want:     "https://www.google.com/maps?q=-33.8688,151.2093",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.location.MapsLink())
		})
	}
}

func TestEmergencyRecord_MapsLink(t *testing.T) {
	record := &entities.EmergencyRecord{
		Location: entities.Location{Latitude: 19, Longitude: 72.8},
	}
	assert.Equal(t, "https://www.google.com/maps?q=19,72.8", record.MapsLink())
}
