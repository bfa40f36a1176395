package analyzer

import (
	"math"

	"github.com/chicogong/route-recorder/pkg/routemodel"
)

// loopnessThreshold is the score above which a route is classified loop.
const loopnessThreshold = 0.5

// classifyPattern is a deterministic function of the route's geometric
// centroid vs. point spread, angular coverage around the centroid,
// turn-direction consistency, and elevation profile.
func classifyPattern(points []routemodel.RoutePoint, distanceM, gainM, lossM float64) (routemodel.PatternTag, float64) {
	if len(points) < 3 || distanceM == 0 {
		return routemodel.PatternUnknown, 0
	}

	closure := closureScore(points, distanceM)
	angular := angularCoverageScore(points)
	turn := turnConsistency(points)
	laps := lapCrossings(points)

	loopness := 0.5*closure + 0.3*angular + 0.2*turn

	switch {
	case closure > 0.85 && laps >= 2:
		return routemodel.PatternMultiLap, clamp01(loopness)
	case closure > 0.85 && turn < 0.4:
		return routemodel.PatternFigureEight, clamp01(loopness)
	case loopness > loopnessThreshold:
		return routemodel.PatternLoop, clamp01(loopness)
	case closure > 0.6:
		return routemodel.PatternOutAndBack, clamp01(closure)
	case gainM > 2*lossM && distanceM > 0:
		return routemodel.PatternPointToPoint, clamp01(1 - closure)
	case gainM < 1 && lossM < 1:
		return routemodel.PatternUnknown, clamp01(1 - loopness)
	default:
		return routemodel.PatternPointToPoint, clamp01(1 - closure)
	}
}

// closureScore is 1 when the route ends where it started relative to its
// total path length, 0 when the endpoints are as far apart as the path
// itself.
func closureScore(points []routemodel.RoutePoint, distanceM float64) float64 {
	first, last := points[0], points[len(points)-1]
	gap := haversineM(first.Lat, first.Lon, last.Lat, last.Lon)
	if distanceM == 0 {
		return 0
	}
	return clamp01(1 - gap/distanceM)
}

// angularCoverageScore measures what fraction of the full circle around
// the centroid the route sweeps through.
func angularCoverageScore(points []routemodel.RoutePoint) float64 {
	cLat, cLon := centroid(points)

	const buckets = 36
	seen := make([]bool, buckets)
	for _, p := range points {
		angle := math.Atan2(p.Lon-cLon, p.Lat-cLat)
		if angle < 0 {
			angle += 2 * math.Pi
		}
		idx := int(angle / (2 * math.Pi) * buckets)
		if idx >= buckets {
			idx = buckets - 1
		}
		seen[idx] = true
	}

	count := 0
	for _, s := range seen {
		if s {
			count++
		}
	}
	return float64(count) / buckets
}

// turnConsistency is near 1 when consecutive heading changes are mostly
// one rotational direction (characteristic of a simple loop), and near 0
// when direction alternates (characteristic of a figure-eight or
// out-and-back retrace).
func turnConsistency(points []routemodel.RoutePoint) float64 {
	var net, total float64
	for i := 2; i < len(points); i++ {
		h1 := bearing(points[i-2], points[i-1])
		h2 := bearing(points[i-1], points[i])
		delta := normalizeAngle(h2 - h1)
		net += delta
		total += math.Abs(delta)
	}
	if total == 0 {
		return 0
	}
	return math.Abs(net) / total
}

// lapCrossings counts how many times the route returns close to its
// starting point after having moved away, a signal for repeated laps.
func lapCrossings(points []routemodel.RoutePoint) int {
	if len(points) < 4 {
		return 0
	}
	start := points[0]
	// radius beyond which the route is considered "away from start"
	maxDist := 0.0
	for _, p := range points {
		d := haversineM(start.Lat, start.Lon, p.Lat, p.Lon)
		if d > maxDist {
			maxDist = d
		}
	}
	if maxDist == 0 {
		return 0
	}
	threshold := maxDist * 0.2

	crossings := 0
	away := false
	for _, p := range points {
		d := haversineM(start.Lat, start.Lon, p.Lat, p.Lon)
		if !away && d > threshold {
			away = true
		} else if away && d <= threshold {
			away = false
			crossings++
		}
	}
	return crossings
}

func centroid(points []routemodel.RoutePoint) (lat, lon float64) {
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return lat / n, lon / n
}

// bearing returns the initial heading in radians from a to b.
func bearing(a, b routemodel.RoutePoint) float64 {
	return math.Atan2(b.Lon-a.Lon, b.Lat-a.Lat)
}

// normalizeAngle maps a radian delta into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
