package core

import (
	"fmt"
	"math"

	"puntocheck.com/puntocheck/model"
)

const earthRadiusMeters = 6371000.0

// GeoResult is the outcome of validating a device location against a
// checkpoint geofence. DistanceMeters is nil when no measurement was
// possible; absence of a measurement must stay distinguishable from an
// exact match.
type GeoResult struct {
	IsValid        bool
	DistanceMeters *float64
	Message        string
}

// ValidateLocation checks a reported device position against the checkpoint's
// geofence. Pure and deterministic.
func ValidateLocation(lat, lon *float64, checkpoint *model.Checkpoint) GeoResult {
	if lat == nil || lon == nil {
		return GeoResult{IsValid: false, Message: "no location provided"}
	}
	if !checkpoint.HasLocation() {
		return GeoResult{IsValid: false, Message: "checkpoint has no location configured"}
	}

	distance := Haversine(*lat, *lon, *checkpoint.Latitude, *checkpoint.Longitude)
	if distance <= checkpoint.RadiusMeters {
		return GeoResult{IsValid: true, DistanceMeters: &distance}
	}

	msg := fmt.Sprintf("a %.0f m del punto de control (límite %.0f m)", distance, checkpoint.RadiusMeters)
	return GeoResult{IsValid: false, DistanceMeters: &distance, Message: msg}
}

// Haversine returns the great-circle distance in meters between two
// coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
