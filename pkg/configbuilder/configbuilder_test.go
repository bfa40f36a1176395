package configbuilder

import (
	"testing"

	"github.com/chicogong/route-recorder/pkg/routemodel"
	"github.com/chicogong/route-recorder/pkg/speedplan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() Request {
	return Request{
		RouteFilePath: "/data/routes/trail.gpx",
		OutputDir:     "/data/output/job-1",
		OutputID:      "job-1",
		UserName:      "alice",
	}
}

func TestBuild_HappyPath(t *testing.T) {
	profile := &routemodel.RouteProfile{}
	plan := speedplan.SpeedPlan{Multiplier: 7, VideoDurationS: 533}

	cfg, err := Build(profile, plan, validRequest(), DefaultRecordingSettings())
	require.NoError(t, err)

	assert.Equal(t, "trail.gpx", cfg.RouteFilename)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 720, cfg.Width)
	assert.Equal(t, 1280, cfg.Height)
	assert.Equal(t, 7, cfg.AnimationSpeed)
	assert.Equal(t, 533, cfg.VideoDurationS)
}

func TestBuild_RejectsRelativeRouteFilePath(t *testing.T) {
	req := validRequest()
	req.RouteFilePath = "relative/path.gpx"

	_, err := Build(&routemodel.RouteProfile{}, speedplan.SpeedPlan{}, req, DefaultRecordingSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConfigError")
}

func TestBuild_RejectsRelativeOutputDir(t *testing.T) {
	req := validRequest()
	req.OutputDir = "relative/dir"

	_, err := Build(&routemodel.RouteProfile{}, speedplan.SpeedPlan{}, req, DefaultRecordingSettings())
	require.Error(t, err)
}

func TestBuild_RejectsMalformedOutputID(t *testing.T) {
	req := validRequest()
	req.OutputID = "not a valid id!"

	_, err := Build(&routemodel.RouteProfile{}, speedplan.SpeedPlan{}, req, DefaultRecordingSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output_id")
}
