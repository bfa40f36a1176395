// Package configbuilder implements the Config Builder: a pure merge of a
// RouteProfile, a SpeedPlan, the caller's request, and recording defaults
// into a complete RenderConfig.
package configbuilder

import (
	"path/filepath"
	"regexp"

	"github.com/chicogong/route-recorder/pkg/errkind"
	"github.com/chicogong/route-recorder/pkg/routemodel"
	"github.com/chicogong/route-recorder/pkg/speedplan"
)

// outputIDPattern is the allowed character set for an output_id: it must
// be safe to use directly as a filename segment.
var outputIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// RecordingSettings mirrors the "recording" block of the orchestrator's
// Settings struct.
type RecordingSettings struct {
	FPS    int
	Width  int
	Height int
}

// DefaultRecordingSettings returns the baked-in defaults: 30fps,
// 720x1280 (portrait).
func DefaultRecordingSettings() RecordingSettings {
	return RecordingSettings{FPS: 30, Width: 720, Height: 1280}
}

// Request carries the caller-supplied fields that aren't derived from
// analysis: the route file location, the desired output location, and
// who the render is for.
type Request struct {
	RouteFilePath string
	RouteFilename string
	OutputDir     string
	OutputID      string
	UserName      string
}

// RenderConfig is the immutable, fully-resolved description of a single
// render invocation.
type RenderConfig struct {
	RouteFilePath  string
	RouteFilename  string
	OutputDir      string
	OutputID       string
	UserName       string
	FPS            int
	Width          int
	Height         int
	AnimationSpeed int
	VideoDurationS int
}

// ConfigError wraps a rejected request.
func ConfigError(reason string) *errkind.Error {
	return errkind.New(errkind.KindConfig, reason, nil)
}

// Build merges profile, plan, req, and settings into a RenderConfig.
// It never touches the filesystem; it only validates and resolves the
// shapes of paths and identifiers already provided by the caller.
func Build(profile *routemodel.RouteProfile, plan speedplan.SpeedPlan, req Request, settings RecordingSettings) (*RenderConfig, error) {
	if !filepath.IsAbs(req.RouteFilePath) {
		return nil, ConfigError("route_file_path must be absolute")
	}
	if !filepath.IsAbs(req.OutputDir) {
		return nil, ConfigError("output_dir must be absolute")
	}
	if !outputIDPattern.MatchString(req.OutputID) {
		return nil, ConfigError("output_id must match [A-Za-z0-9_-]+")
	}

	fps, width, height := settings.FPS, settings.Width, settings.Height
	if fps == 0 {
		fps = DefaultRecordingSettings().FPS
	}
	if width == 0 {
		width = DefaultRecordingSettings().Width
	}
	if height == 0 {
		height = DefaultRecordingSettings().Height
	}

	filename := req.RouteFilename
	if filename == "" {
		filename = filepath.Base(req.RouteFilePath)
	}

	return &RenderConfig{
		RouteFilePath:  req.RouteFilePath,
		RouteFilename:  filename,
		OutputDir:      req.OutputDir,
		OutputID:       req.OutputID,
		UserName:       req.UserName,
		FPS:            fps,
		Width:          width,
		Height:         height,
		AnimationSpeed: plan.Multiplier,
		VideoDurationS: plan.VideoDurationS,
	}, nil
}
