// Package routemodel defines the shared data model for analyzed routes and
// the render parameters derived from them. Types here are passed by value
// or by immutable pointer between the analyzer, speed planner, config
// builder, and orchestrator packages.
package routemodel

import "time"

// RoutePoint is a single sample along a route.
type RoutePoint struct {
	Index     int        `json:"index"`
	Lat       float64    `json:"lat"`
	Lon       float64    `json:"lon"`
	Elevation *float64   `json:"elevation_m,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// TimestampQuality reports whether a route's timestamps can be trusted to
// derive duration directly, or whether a distance/speed fallback was used.
type TimestampQuality string

const (
	TimestampValid   TimestampQuality = "valid"
	TimestampInvalid TimestampQuality = "invalid"
)

// PatternTag classifies the overall shape of a route.
type PatternTag string

const (
	PatternPointToPoint PatternTag = "point-to-point"
	PatternOutAndBack   PatternTag = "out-and-back"
	PatternLoop         PatternTag = "loop"
	PatternFigureEight  PatternTag = "figure-eight"
	PatternMultiLap     PatternTag = "multi-lap"
	PatternUnknown      PatternTag = "unknown"
)

// OverlayHook is a single annotation event keyed by normalized progress
// along the route, e.g. the steepest climb or the turnaround point.
type OverlayHook struct {
	Kind     string  `json:"kind"`
	Label    string  `json:"label"`
	Progress float64 `json:"progress"` // in [0,1]
}

// RouteProfile is the immutable output of the Route Analyzer.
type RouteProfile struct {
	Points []RoutePoint `json:"-"`

	DistanceM        float64 `json:"distance_m"`
	ElevationGainM   float64 `json:"elevation_gain_m"`
	ElevationLossM   float64 `json:"elevation_loss_m"`
	DurationS        float64 `json:"duration_s"`
	TimestampQuality TimestampQuality `json:"timestamp_quality"`

	PatternTag        PatternTag `json:"pattern_tag"`
	PatternConfidence float64    `json:"pattern_confidence"`

	OverlayHooks []OverlayHook `json:"overlay_hooks"`

	// Warnings carries non-fatal analysis concerns (e.g. TooShortError)
	// that do not prevent a RouteProfile from being usable.
	Warnings []string `json:"warnings,omitempty"`
}

// DurationMinutes is a convenience accessor used throughout the speed
// planner's multiplier math.
func (p *RouteProfile) DurationMinutes() float64 {
	return p.DurationS / 60.0
}
