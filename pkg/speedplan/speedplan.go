// Package speedplan implements the Speed Planner: given a RouteProfile
// and animation settings, it computes the multiplier that keeps the
// rendered video inside the configured maximum duration.
package speedplan

import (
	"math"

	"github.com/chicogong/route-recorder/pkg/routemodel"
)

// introOutroBufferS is the fixed intro/outro buffer added to every
// rendered video's duration.
const introOutroBufferS = 19

// RationaleTag explains why a particular multiplier was chosen.
type RationaleTag string

const (
	RationaleFixed         RationaleTag = "fixed"
	RationaleAdaptive      RationaleTag = "adaptive"
	RationaleCappedExceeds RationaleTag = "capped-exceeds"
)

// Settings mirrors the "animation" block of the orchestrator's Settings
// struct.
type Settings struct {
	DefaultSpeed    int     `json:"default_speed" yaml:"default_speed"`
	MinSpeed        int     `json:"min_speed" yaml:"min_speed"`
	MaxSpeed        int     `json:"max_speed" yaml:"max_speed"`
	MaxVideoMinutes float64 `json:"max_video_minutes" yaml:"max_video_minutes"`
	AdaptiveEnabled bool    `json:"adaptive_enabled" yaml:"adaptive_enabled"`
}

// SpeedPlan is the immutable output of Plan.
type SpeedPlan struct {
	Multiplier     int
	VideoDurationS int
	RationaleTag   RationaleTag
}

// Plan computes the animation multiplier and expected video duration for
// profile under settings. It never fails: an infeasible cap is reported
// via RationaleCappedExceeds and left for the Coordinator to decide.
func Plan(profile *routemodel.RouteProfile, settings Settings) SpeedPlan {
	if !settings.AdaptiveEnabled {
		multiplier := settings.DefaultSpeed
		return SpeedPlan{
			Multiplier:     multiplier,
			VideoDurationS: videoDurationS(profile.DurationS, multiplier),
			RationaleTag:   RationaleFixed,
		}
	}

	denom := settings.MaxVideoMinutes - 0.5
	required := int(math.Ceil(profile.DurationMinutes() / denom))

	multiplier := required
	if settings.DefaultSpeed > multiplier {
		multiplier = settings.DefaultSpeed
	}
	multiplier = clamp(multiplier, settings.MinSpeed, settings.MaxSpeed)

	videoDurationS := videoDurationS(profile.DurationS, multiplier)
	rationale := RationaleAdaptive
	if float64(videoDurationS) > settings.MaxVideoMinutes*60 {
		rationale = RationaleCappedExceeds
	}

	return SpeedPlan{
		Multiplier:     multiplier,
		VideoDurationS: videoDurationS,
		RationaleTag:   rationale,
	}
}

func videoDurationS(durationS float64, multiplier int) int {
	if multiplier <= 0 {
		multiplier = 1
	}
	return int(math.Ceil(durationS/float64(multiplier))) + introOutroBufferS
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
