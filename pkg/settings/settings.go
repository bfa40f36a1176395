// Package settings defines the orchestrator's explicit, fully-defaulted
// configuration record and its JSON/YAML loading and hot-reload.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chicogong/route-recorder/pkg/configbuilder"
	"github.com/chicogong/route-recorder/pkg/execctl"
	"github.com/chicogong/route-recorder/pkg/speedplan"
)

// WindowBounds is the lo/hi overall-progress window the RENDER stage's
// fractional child progress is remapped onto.
type WindowBounds struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// OrchestratorSettings mirrors the "orchestrator" block of the control
// surface: concurrency cap, per-job timeout, and the progress remap
// window.
type OrchestratorSettings struct {
	MaxConcurrent  int          `json:"max_concurrent" yaml:"max_concurrent"`
	JobTimeoutMS   int64        `json:"job_timeout_ms" yaml:"job_timeout_ms"`
	JobTimeout     *Duration    `json:"job_timeout,omitempty" yaml:"job_timeout,omitempty"`
	ProgressWindow WindowBounds `json:"progress_map_window" yaml:"progress_map_window"`
	BufferSeconds  int          `json:"buffer_seconds" yaml:"buffer_seconds"`
	FallbackWaitS  int          `json:"fallback_wait_s" yaml:"fallback_wait_s"`
}

// resolveJobTimeoutMS lets config files express the per-job wall-clock
// budget as a human duration string (job_timeout) instead of, or on top
// of, a raw millisecond count (job_timeout_ms); the duration string wins
// when both are present.
func (o OrchestratorSettings) resolveJobTimeoutMS() int64 {
	if o.JobTimeout != nil {
		return o.JobTimeout.Milliseconds()
	}
	return o.JobTimeoutMS
}

// Settings is the full, explicit configuration record. Every field has a
// documented default produced by Default().
type Settings struct {
	Animation speedplan.Settings            `json:"animation" yaml:"animation"`
	Recording configbuilder.RecordingSettings `json:"recording" yaml:"recording"`
	Memory    execctl.MemorySettings         `json:"memory" yaml:"memory"`
	Orchestrator OrchestratorSettings        `json:"orchestrator" yaml:"orchestrator"`
}

// Default returns the baked-in defaults for every field.
func Default() Settings {
	return Settings{
		Animation: speedplan.Settings{
			DefaultSpeed:    2,
			MinSpeed:        1,
			MaxSpeed:        100,
			MaxVideoMinutes: 10,
			AdaptiveEnabled: true,
		},
		Recording: configbuilder.DefaultRecordingSettings(),
		Memory: execctl.MemorySettings{
			CheckIntervalMS:     30000,
			WarningThresholdMB:  1500,
			CriticalThresholdMB: 2000,
			SampleCapacity:      512,
		},
		Orchestrator: OrchestratorSettings{
			MaxConcurrent:  1,
			JobTimeoutMS:   60 * 60 * 1000,
			ProgressWindow: WindowBounds{Lo: 35, Hi: 85},
			BufferSeconds:  19,
			FallbackWaitS:  600,
		},
	}
}

// Load reads Settings from path, choosing JSON or YAML decoding by file
// extension, and filling every field the file omits from Default().
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings file: %w", err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse YAML settings: %w", err)
		}
		s.Orchestrator.JobTimeoutMS = s.Orchestrator.resolveJobTimeoutMS()
		return s, nil
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse JSON settings: %w", err)
	}
	s.Orchestrator.JobTimeoutMS = s.Orchestrator.resolveJobTimeoutMS()
	return s, nil
}
