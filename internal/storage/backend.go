package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLocation is returned when a backend cannot split a location.
var ErrUnsupportedLocation = errors.New("unsupported location for storage backend")

// Object is a location split into its bucket (or container) and key.
// Filesystem backends leave Bucket empty.
type Object struct {
	Bucket string
	Key    string
}

// Backend describes a kind of backup storage. Locations are plain strings
// so implementations can decide their own format; no backend performs I/O.
type Backend interface {
	// Object splits a location into bucket and key.
	Object(location string) (Object, error)

	// Filesystem reports whether locations are paths on a mounted
	// filesystem (NFS) rather than object storage URIs.
	Filesystem() bool

	// Name returns the backend identifier (e.g. "nfs", "s3").
	Name() string
}

// schemeBackend handles "<scheme>://<bucket>/<key>" object storage URIs.
type schemeBackend struct {
	name   string
	scheme string
}

func (b schemeBackend) Name() string     { return b.name }
func (b schemeBackend) Filesystem() bool { return false }

func (b schemeBackend) Object(location string) (Object, error) {
	rest, ok := strings.CutPrefix(location, b.scheme+"://")
	if !ok {
		return Object{}, fmt.Errorf("%w: %s wants %s:// locations, got %q", ErrUnsupportedLocation, b.name, b.scheme, location)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Object{}, fmt.Errorf("%w: %q has no bucket", ErrUnsupportedLocation, location)
	}
	return Object{Bucket: bucket, Key: strings.TrimLeft(key, "/")}, nil
}

// nfsBackend handles absolute paths below an NFS mount.
type nfsBackend struct{}

func (nfsBackend) Name() string     { return "nfs" }
func (nfsBackend) Filesystem() bool { return true }

func (nfsBackend) Object(location string) (Object, error) {
	if !strings.HasPrefix(location, "/") {
		return Object{}, fmt.Errorf("%w: nfs wants an absolute path, got %q", ErrUnsupportedLocation, location)
	}
	return Object{Key: location}, nil
}

func init() {
	Register("nfs", func(any) (Backend, error) { return nfsBackend{}, nil })
	Register("s3", func(any) (Backend, error) { return schemeBackend{name: "s3", scheme: "s3"}, nil })
	Register("gcs", func(any) (Backend, error) { return schemeBackend{name: "gcs", scheme: "gs"}, nil })
}
