package execctl

import (
	"strconv"

	"github.com/chicogong/route-recorder/pkg/errkind"
)

// SpawnError wraps a failure to start the child process.
func SpawnError(reason string, err error) *errkind.Error {
	return errkind.New(errkind.KindSpawn, reason, err)
}

// ContainerExitError carries the child's nonzero exit code.
type ContainerExitError struct {
	ExitCode int
}

func (e *ContainerExitError) Kind() errkind.Kind { return errkind.KindContainerExit }

func (e *ContainerExitError) Error() string {
	return "ContainerExitError: exit code " + strconv.Itoa(e.ExitCode)
}

// ContainerIOError wraps a failure reading the child's stdout/stderr.
func ContainerIOError(reason string, err error) *errkind.Error {
	return errkind.New(errkind.KindContainerIO, reason, err)
}
