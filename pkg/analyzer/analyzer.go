// Package analyzer implements the Route Analyzer: it parses a route file
// into an ordered point sequence and derives the immutable RouteProfile
// consumed by the rest of the pipeline.
package analyzer

import "github.com/chicogong/route-recorder/pkg/routemodel"

// minPoints is the fewest points a route may have before it is rejected
// as empty.
const minPoints = 2

// tooShortDistanceM is the distance below which a route is flagged with a
// non-fatal TooShortError warning.
const tooShortDistanceM = 1.0

// Analyze parses the route file at path and builds its RouteProfile.
// It fails with a ParseError for malformed input or an EmptyRouteError
// if the route has fewer than two points.
func Analyze(path string) (*routemodel.RouteProfile, error) {
	kind, err := Sniff(path)
	if err != nil {
		return nil, err
	}

	points, err := parseFile(path, kind)
	if err != nil {
		return nil, err
	}

	if len(points) < minPoints {
		return nil, EmptyRouteError("route has fewer than 2 points")
	}

	distanceM, gainM, lossM := accumulate(points)
	durationS, quality := classifyDuration(points, distanceM)
	patternTag, confidence := classifyPattern(points, distanceM, gainM, lossM)
	hooks := buildOverlayHooks(points)

	profile := &routemodel.RouteProfile{
		Points:            points,
		DistanceM:         distanceM,
		ElevationGainM:    gainM,
		ElevationLossM:    lossM,
		DurationS:         durationS,
		TimestampQuality:  quality,
		PatternTag:        patternTag,
		PatternConfidence: confidence,
		OverlayHooks:      hooks,
	}

	if distanceM < tooShortDistanceM {
		profile.Warnings = append(profile.Warnings, tooShortWarning(distanceM))
	}

	return profile, nil
}
