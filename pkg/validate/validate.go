// Package validate implements the Output Validator: after the render
// container exits, it verifies the expected video artifact exists and is
// non-empty.
package validate

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chicogong/route-recorder/pkg/errkind"
	"github.com/chicogong/route-recorder/pkg/execctl"
)

const videoFilename = "route-video.mp4"

// Reason names why output validation failed.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonEmpty      Reason = "empty"
	ReasonUnreadable Reason = "unreadable"
)

// ValidationError carries the specific Reason a render's output failed
// validation.
type ValidationError struct {
	Reason Reason
	detail string
}

func (e *ValidationError) Kind() errkind.Kind { return errkind.KindValidation }

func (e *ValidationError) Error() string {
	return "ValidationError(" + string(e.Reason) + "): " + e.detail
}

// Artifact is the validated output's filesystem metadata.
type Artifact struct {
	VideoPath string
	SizeBytes int64
	ModTime   time.Time
}

// Validate checks, in order, that <outputDir>/route-video.mp4 exists and
// is non-empty. result is not read here, and a ValidationError carries no
// stdout/stderr tails; the Coordinator attaches those from the exec
// result to the job's failure record.
func Validate(outputDir string, result *execctl.ExecResult) (*Artifact, error) {
	videoPath := filepath.Join(outputDir, videoFilename)

	info, err := os.Stat(videoPath)
	if os.IsNotExist(err) {
		return nil, &ValidationError{Reason: ReasonMissing, detail: videoPath + " does not exist"}
	}
	if err != nil {
		return nil, &ValidationError{Reason: ReasonUnreadable, detail: err.Error()}
	}

	if info.Size() == 0 {
		return nil, &ValidationError{Reason: ReasonEmpty, detail: videoPath + " is empty"}
	}

	return &Artifact{
		VideoPath: videoPath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}
