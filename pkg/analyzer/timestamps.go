package analyzer

import "github.com/chicogong/route-recorder/pkg/routemodel"

// maxPlausibleSegmentSpeedMPS above which a segment is considered an
// implausible timestamp artifact rather than real travel.
const maxPlausibleSegmentSpeedMPS = 50.0

// implausibleSegmentFraction is the share of segments allowed to exceed
// maxPlausibleSegmentSpeedMPS before timestamps are distrusted entirely.
const implausibleSegmentFraction = 0.10

// minTrustedSpanS is the minimum total timestamp span that is accepted
// as a valid duration; shorter spans fall back to the distance heuristic
// even if the timestamps are otherwise well-formed.
const minTrustedSpanS = 60.0

// classifyDuration decides whether points carry trustworthy timestamps
// and returns the resulting duration in seconds along with the quality
// tag. distanceM is used for the walking-speed fallback.
func classifyDuration(points []routemodel.RoutePoint, distanceM float64) (durationS float64, quality routemodel.TimestampQuality) {
	if !allTimestamped(points) {
		return fallbackDuration(distanceM), routemodel.TimestampInvalid
	}

	if !monotonic(points) {
		return fallbackDuration(distanceM), routemodel.TimestampInvalid
	}

	span := points[len(points)-1].Timestamp.Sub(*points[0].Timestamp).Seconds()
	if span < minTrustedSpanS {
		return fallbackDuration(distanceM), routemodel.TimestampInvalid
	}

	if implausibleSegments(points) {
		return fallbackDuration(distanceM), routemodel.TimestampInvalid
	}

	return span, routemodel.TimestampValid
}

func fallbackDuration(distanceM float64) float64 {
	return distanceM / walkingSpeedMPS
}

func allTimestamped(points []routemodel.RoutePoint) bool {
	for _, p := range points {
		if p.Timestamp == nil {
			return false
		}
	}
	return true
}

// monotonic requires strictly increasing timestamps: both backwards and
// duplicated consecutive timestamps are treated as invalid.
func monotonic(points []routemodel.RoutePoint) bool {
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(*points[i-1].Timestamp) {
			return false
		}
	}
	return true
}

// implausibleSegments reports whether more than implausibleSegmentFraction
// of consecutive segments imply a speed exceeding
// maxPlausibleSegmentSpeedMPS.
func implausibleSegments(points []routemodel.RoutePoint) bool {
	if len(points) < 2 {
		return false
	}

	var bad, total int
	for i := 1; i < len(points); i++ {
		dt := points[i].Timestamp.Sub(*points[i-1].Timestamp).Seconds()
		if dt <= 0 {
			continue
		}
		d := haversineM(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
		total++
		if d/dt > maxPlausibleSegmentSpeedMPS {
			bad++
		}
	}

	if total == 0 {
		return false
	}
	return float64(bad)/float64(total) > implausibleSegmentFraction
}
