package orchestrator

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-memory storage.Storage fake for exercising
// remote route-file staging without a real S3/HTTP backend.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, uri string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[uri]
	if !ok {
		return nil, assert.AnError
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Put(_ context.Context, uri string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[uri] = b
	return nil
}

func (m *memStore) Delete(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, uri)
	return nil
}

func (m *memStore) Exists(_ context.Context, uri string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[uri]
	return ok, nil
}

func TestStageRemoteRouteFile_DownloadsAndRewritesPath(t *testing.T) {
	store := newMemStore()
	store.objects["s3://bucket/route.gpx"] = []byte(sampleGPX)

	c := New(testSettings(), WithRemoteStore(store, ""))
	defer c.Close()

	req := Request{RouteFilePath: "s3://bucket/route.gpx", RouteFilename: "route.gpx"}
	cleanup, err := c.stageRemoteRouteFile(context.Background(), &req)
	require.NoError(t, err)
	defer cleanup()

	assert.NotEqual(t, "s3://bucket/route.gpx", req.RouteFilePath)
	assert.True(t, looksLikeURI("s3://bucket/route.gpx"))
	assert.False(t, looksLikeURI("/tmp/route.gpx"))
}

func TestStageRemoteRouteFile_LocalPathUnchanged(t *testing.T) {
	c := New(testSettings())
	defer c.Close()

	req := Request{RouteFilePath: "/tmp/route.gpx"}
	cleanup, err := c.stageRemoteRouteFile(context.Background(), &req)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "/tmp/route.gpx", req.RouteFilePath)
}

func TestStageRemoteRouteFile_DisallowedScheme(t *testing.T) {
	store := newMemStore()
	c := New(testSettings(), WithRemoteStore(store, ""))
	defer c.Close()

	req := Request{RouteFilePath: "ftp://bucket/route.gpx"}
	_, err := c.stageRemoteRouteFile(context.Background(), &req)
	assert.Error(t, err)
}
