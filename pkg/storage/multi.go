package storage

import (
	"context"
	"fmt"
	"io"
)

// MultiStorage dispatches each call to the backend registered for the
// URI's scheme, so a single Storage value can serve file://, http(s)://,
// and s3:// route sources and archive destinations interchangeably.
type MultiStorage struct {
	backends map[string]Storage
}

// NewMultiStorage builds a MultiStorage that dispatches s3:// to s3
// (nil is allowed when S3 archiving isn't configured), http:// and
// https:// to an HTTPStorage, and file:// to a LocalStorage.
func NewMultiStorage(s3 Storage) *MultiStorage {
	backends := map[string]Storage{
		"file": NewLocalStorage(),
	}
	http := NewHTTPStorage()
	backends["http"] = http
	backends["https"] = http
	if s3 != nil {
		backends["s3"] = s3
	}
	return &MultiStorage{backends: backends}
}

func (m *MultiStorage) backendFor(uri string) (Storage, error) {
	scheme, _, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	backend, ok := m.backends[scheme]
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for scheme %q", scheme)
	}
	return backend, nil
}

func (m *MultiStorage) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	backend, err := m.backendFor(uri)
	if err != nil {
		return nil, err
	}
	return backend.Get(ctx, uri)
}

func (m *MultiStorage) Put(ctx context.Context, uri string, data io.Reader) error {
	backend, err := m.backendFor(uri)
	if err != nil {
		return err
	}
	return backend.Put(ctx, uri, data)
}

func (m *MultiStorage) Delete(ctx context.Context, uri string) error {
	backend, err := m.backendFor(uri)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, uri)
}

func (m *MultiStorage) Exists(ctx context.Context, uri string) (bool, error) {
	backend, err := m.backendFor(uri)
	if err != nil {
		return false, err
	}
	return backend.Exists(ctx, uri)
}
