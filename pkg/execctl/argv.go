package execctl

import (
	"fmt"
	"os"
	"strconv"

	"github.com/chicogong/route-recorder/pkg/configbuilder"
)

const (
	cpuImage = "cesium-route-recorder"
	gpuImage = "cesium-route-recorder:gpu"

	containerInputDir  = "/app/dist"
	containerOutputDir = "/output"
)

// gpuDeviceNode is the device file whose presence is taken as evidence
// that the host can run the GPU-variant image. No corpus example shells
// out to a vendor probe binary (e.g. nvidia-smi); a device-node check
// keeps the executor free of an undocumented external dependency beyond
// the container runtime itself.
var gpuDeviceNode = "/dev/nvidia0"

// gpuAvailable reports whether the GPU-variant image should be used.
func gpuAvailable() bool {
	_, err := os.Stat(gpuDeviceNode)
	return err == nil
}

// buildArgv assembles the docker invocation for cfg per the render
// container invocation contract: bind mounts, environment variables, and
// image selection by GPU availability.
func buildArgv(cfg *configbuilder.RenderConfig, useGPU bool) []string {
	image := cpuImage
	if useGPU {
		image = gpuImage
	}

	args := []string{
		"run", "--rm",
		"-v", fmt.Sprintf("%s:%s/%s:ro", cfg.RouteFilePath, containerInputDir, cfg.RouteFilename),
		"-v", fmt.Sprintf("%s:%s", cfg.OutputDir, containerOutputDir),
		"-e", "GPX_FILENAME=" + cfg.RouteFilename,
		"-e", "ANIMATION_SPEED=" + strconv.Itoa(cfg.AnimationSpeed),
		"-e", "USER_NAME=" + cfg.UserName,
		"-e", "HEADLESS=1",
		"-e", "RECORD_FPS=" + strconv.Itoa(cfg.FPS),
		"-e", "RECORD_WIDTH=" + strconv.Itoa(cfg.Width),
		"-e", "RECORD_HEIGHT=" + strconv.Itoa(cfg.Height),
	}

	if cfg.VideoDurationS > 0 {
		args = append(args, "-e", "RECORD_DURATION="+strconv.Itoa(cfg.VideoDurationS))
	}

	if useGPU {
		args = append(args, "--gpus", "all")
	}

	args = append(args, image)
	return args
}
