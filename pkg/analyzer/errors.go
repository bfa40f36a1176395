package analyzer

import "github.com/chicogong/route-recorder/pkg/errkind"

// ParseError wraps a malformed or unreadable route file.
func ParseError(reason string, err error) *errkind.Error {
	return errkind.New(errkind.KindParse, reason, err)
}

// EmptyRouteError is returned when a route has fewer than 2 points.
func EmptyRouteError(reason string) *errkind.Error {
	return errkind.New(errkind.KindEmptyRoute, reason, nil)
}

// tooShortWarning formats the warning text recorded on RouteProfile.Warnings
// for TooShortError; it is not fatal, so it is never returned as an error.
func tooShortWarning(distanceM float64) string {
	return "TooShortError: route distance is only " + formatMeters(distanceM) + "m"
}
