package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/chicogong/route-recorder/pkg/storage"
)

// stageRemoteRouteFile downloads req.RouteFilePath into a local temp file
// and rewrites the Request to point at it, when the path is a remote URI
// rather than a local filesystem path. A bare local path (no scheme) is
// returned unchanged.
func (c *Coordinator) stageRemoteRouteFile(ctx context.Context, req *Request) (cleanup func(), err error) {
	if c.remoteStore == nil || !looksLikeURI(req.RouteFilePath) {
		return func() {}, nil
	}

	scheme, _, err := storage.ParseURI(req.RouteFilePath)
	if err != nil {
		return nil, InternalError("failed to parse route_file_path as URI", err)
	}
	if !storage.IsAllowedScheme(scheme) {
		return nil, InternalError(fmt.Sprintf("scheme %q is not an allowed storage scheme", scheme), nil)
	}

	rc, err := c.remoteStore.Get(ctx, req.RouteFilePath)
	if err != nil {
		return nil, InternalError("failed to fetch remote route file", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "route-*"+filepath.Ext(req.RouteFilePath))
	if err != nil {
		return nil, InternalError("failed to create staging file", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, rc); err != nil {
		os.Remove(tmp.Name())
		return nil, InternalError("failed to stage remote route file", err)
	}

	staged := tmp.Name()
	req.RouteFilePath = staged
	return func() { os.Remove(staged) }, nil
}

// archiveOutput uploads the validated render artifact to the
// Coordinator's configured archive destination, when one is set. Failure
// to archive does not fail the job: it is a best-effort supplemental
// feature, not part of the render contract.
func (c *Coordinator) archiveOutput(job *Job) {
	if c.remoteStore == nil || c.archiveURIPrefix == "" {
		return
	}
	if job.validatedArtifact == nil {
		return
	}

	f, err := os.Open(job.validatedArtifact.VideoPath)
	if err != nil {
		return
	}
	defer f.Close()

	dest := c.archiveURIPrefix + "/" + job.OutputID + "/route-video.mp4"
	_ = c.remoteStore.Put(c.ctx, dest, f)
}

func looksLikeURI(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.Scheme != "" && u.Scheme != "file"
}
