package storage

import (
	"errors"
	"io"
)

// ErrNotFound is returned when a reference does not resolve to a stored
// artifact.
var ErrNotFound = errors.New("storage: artifact not found")

// ArtifactSink stores uploaded proof files and avatars. References are
// opaque to callers: they are persisted on the owning record and handed
// back to Open verbatim, so disk and cloud implementations are
// interchangeable behind this interface.
type ArtifactSink interface {
	// Put stores the content and returns an opaque reference to it.
	Put(filename string, content io.Reader) (string, error)

	// Open returns the stored content for a reference.
	Open(ref string) (io.ReadCloser, error)

	// Remove deletes the stored content for a reference.
	Remove(ref string) error
}
