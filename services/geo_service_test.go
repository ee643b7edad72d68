package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"optimarket/models"
)

func coord(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	// One degree of longitude at the equator is roughly 111 km.
	d := Haversine(0, 0, 0, 1)
	assert.InDelta(t, 111.19, d, 0.5)

	assert.Zero(t, Haversine(48.85, 2.35, 48.85, 2.35))

	// Paris to London, roughly 344 km.
	assert.InDelta(t, 344, Haversine(48.8566, 2.3522, 51.5074, -0.1278), 5)
}

func TestNearestRanksByDistance(t *testing.T) {
	candidates := []models.Optician{
		{ID: 1, Name: "far", Latitude: coord(0), Longitude: coord(2)},
		{ID: 2, Name: "near", Latitude: coord(0), Longitude: coord(1)},
	}

	ranked := Nearest(0, 0, candidates, 1)

	assert.Len(t, ranked, 1)
	assert.Equal(t, int64(2), ranked[0].ID)
	assert.InDelta(t, 111.19, ranked[0].DistanceKM, 0.5)
}

func TestNearestExcludesMissingCoordinates(t *testing.T) {
	candidates := []models.Optician{
		{ID: 1, Latitude: coord(0), Longitude: nil},
		{ID: 2, Latitude: nil, Longitude: coord(0)},
		{ID: 3, Latitude: coord(0), Longitude: coord(5)},
	}

	ranked := Nearest(0, 0, candidates, 10)

	assert.Len(t, ranked, 1)
	assert.Equal(t, int64(3), ranked[0].ID)
}

func TestNearestStableOnTies(t *testing.T) {
	// Same distance from the origin; the original relative order must
	// be preserved.
	candidates := []models.Optician{
		{ID: 10, Latitude: coord(0), Longitude: coord(1)},
		{ID: 20, Latitude: coord(0), Longitude: coord(-1)},
		{ID: 30, Latitude: coord(1), Longitude: coord(0)},
	}

	ranked := Nearest(0, 0, candidates, 0)

	assert.Equal(t, []int64{10, 20, 30}, []int64{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestNearestLimitZeroMeansAll(t *testing.T) {
	candidates := []models.Optician{
		{ID: 1, Latitude: coord(0), Longitude: coord(1)},
		{ID: 2, Latitude: coord(0), Longitude: coord(2)},
	}

	assert.Len(t, Nearest(0, 0, candidates, 0), 2)
}
