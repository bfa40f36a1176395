package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/chicogong/route-recorder/pkg/routemodel"
	"github.com/chicogong/route-recorder/pkg/speedplan"
)

// overlayDocument is the PREPARE-stage artifact the render container
// reads to know what to draw on top of the map animation.
type overlayDocument struct {
	DistanceM         float64                  `json:"distance_m"`
	ElevationGainM    float64                  `json:"elevation_gain_m"`
	ElevationLossM    float64                  `json:"elevation_loss_m"`
	DurationS         float64                  `json:"duration_s"`
	TimestampQuality  string                   `json:"timestamp_quality"`
	Pattern           string                   `json:"pattern"`
	PatternConfidence float64                  `json:"pattern_confidence"`
	AnimationSpeed    int                      `json:"animation_speed"`
	VideoDurationS    int                      `json:"video_duration_s"`
	OverlayHooks      []routemodel.OverlayHook `json:"overlay_hooks"`
	Warnings          []string                 `json:"warnings,omitempty"`
}

func writeOverlayData(outputDir string, profile *routemodel.RouteProfile, plan speedplan.SpeedPlan) error {
	doc := overlayDocument{
		DistanceM:         profile.DistanceM,
		ElevationGainM:    profile.ElevationGainM,
		ElevationLossM:    profile.ElevationLossM,
		DurationS:         profile.DurationS,
		TimestampQuality:  string(profile.TimestampQuality),
		Pattern:           string(profile.PatternTag),
		PatternConfidence: profile.PatternConfidence,
		AnimationSpeed:    plan.Multiplier,
		VideoDurationS:    plan.VideoDurationS,
		OverlayHooks:      profile.OverlayHooks,
		Warnings:          profile.Warnings,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(outputDir, "overlay-data.json"), data, 0o644)
}
