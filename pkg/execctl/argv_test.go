package execctl

import (
	"testing"

	"github.com/chicogong/route-recorder/pkg/configbuilder"
	"github.com/stretchr/testify/assert"
)

func sampleCfg() *configbuilder.RenderConfig {
	return &configbuilder.RenderConfig{
		RouteFilePath:  "/data/routes/trail.gpx",
		RouteFilename:  "trail.gpx",
		OutputDir:      "/data/output/job-1",
		OutputID:       "job-1",
		UserName:       "alice",
		FPS:            30,
		Width:          720,
		Height:         1280,
		AnimationSpeed: 7,
		VideoDurationS: 533,
	}
}

func TestBuildArgv_CPUImage(t *testing.T) {
	args := buildArgv(sampleCfg(), false)

	assert.Contains(t, args, cpuImage)
	assert.NotContains(t, args, gpuImage)
	assert.Contains(t, args, "-e")
	assert.Contains(t, args, "ANIMATION_SPEED=7")
	assert.Contains(t, args, "RECORD_DURATION=533")
}

func TestBuildArgv_GPUImageAddsFlag(t *testing.T) {
	args := buildArgv(sampleCfg(), true)

	assert.Contains(t, args, gpuImage)
	assert.Contains(t, args, "--gpus")
}

func TestBuildArgv_BindMounts(t *testing.T) {
	args := buildArgv(sampleCfg(), false)

	found := false
	for _, a := range args {
		if a == "/data/routes/trail.gpx:/app/dist/trail.gpx:ro" {
			found = true
		}
	}
	assert.True(t, found)
}
