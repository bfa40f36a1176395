package analyzer

import (
	"math"
	"strconv"

	"github.com/chicogong/route-recorder/pkg/routemodel"
)

// earthRadiusM is the mean Earth radius used for Haversine distance.
const earthRadiusM = 6371000.0

// walkingSpeedMPS is the fallback speed used to estimate duration when
// timestamps are absent or untrustworthy.
const walkingSpeedMPS = 1.39

// haversineM returns the great-circle distance in meters between two
// points given in degrees.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// accumulate walks consecutive points computing total distance and
// elevation gain/loss. Missing elevations are treated as 0 deltas.
func accumulate(points []routemodel.RoutePoint) (distanceM, gainM, lossM float64) {
	var prevElev float64
	haveElev := false

	for i, p := range points {
		if i > 0 {
			prev := points[i-1]
			distanceM += haversineM(prev.Lat, prev.Lon, p.Lat, p.Lon)
		}

		if p.Elevation != nil {
			if haveElev {
				delta := *p.Elevation - prevElev
				if delta > 0 {
					gainM += delta
				} else {
					lossM += -delta
				}
			}
			prevElev = *p.Elevation
			haveElev = true
		}
	}

	return distanceM, gainM, lossM
}

func formatMeters(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}
