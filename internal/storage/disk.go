package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskSink stores artifacts as files under a base directory. The
// returned reference is the generated file name, never a full path, so
// references stay valid if the base directory moves.
type DiskSink struct {
	baseDir string
}

// NewDiskSink creates the base directory if needed.
func NewDiskSink(baseDir string) (*DiskSink, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskSink{baseDir: baseDir}, nil
}

// Put writes the content to a file named by the sha256 of its bytes plus
// the original extension. Identical uploads dedupe naturally.
func (s *DiskSink) Put(filename string, content io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.baseDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	ref := fmt.Sprintf("%s-%d%s", hex.EncodeToString(hasher.Sum(nil))[:16], time.Now().UnixNano(), ext)

	if err := os.Rename(tmpName, filepath.Join(s.baseDir, ref)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return ref, nil
}

// Open returns the stored file for a reference.
func (s *DiskSink) Open(ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// Remove deletes the stored file for a reference.
func (s *DiskSink) Remove(ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// resolve rejects references that would escape the base directory.
func (s *DiskSink) resolve(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) {
		return "", ErrNotFound
	}
	return filepath.Join(s.baseDir, ref), nil
}
