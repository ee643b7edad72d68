package services

import (
	"math"
	"sort"

	"optimarket/models"
)

const earthRadiusKM = 6371

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// Nearest ranks candidates by distance from the origin, ascending.
// Candidates missing either coordinate are dropped. The sort is stable
// so equal distances keep their original relative order. A limit <= 0
// means no truncation.
func Nearest(lat, lon float64, candidates []models.Optician, limit int) []models.NearbyOptician {
	ranked := make([]models.NearbyOptician, 0, len(candidates))
	for _, o := range candidates {
		if o.Latitude == nil || o.Longitude == nil {
			continue
		}
		ranked = append(ranked, models.NearbyOptician{
			ID:         o.ID,
			Name:       o.Name,
			Company:    o.Company,
			City:       o.City,
			Latitude:   *o.Latitude,
			Longitude:  *o.Longitude,
			DistanceKM: Haversine(lat, lon, *o.Latitude, *o.Longitude),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKM < ranked[j].DistanceKM
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
