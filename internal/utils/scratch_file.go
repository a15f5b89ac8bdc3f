package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ScratchFile is a uniquely named temporary file owned by a single pipeline run
type ScratchFile struct {
	path string
}

// NewScratchFile writes content to a fresh temporary file in dir (os.TempDir when empty)
func NewScratchFile(dir string, content []byte) (*ScratchFile, error) {
	f, err := os.CreateTemp(dir, "mail-ingress-*")
	if err != nil {
		return nil, fmt.Errorf("could not create temporary file: %w", err)
	}

	s := &ScratchFile{path: f.Name()}

	_, werr := f.Write(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(s.path)
		return nil, fmt.Errorf("could not write temporary file: %w", err)
	}

	return s, nil
}

// Path returns the current location of the scratch bytes
func (s *ScratchFile) Path() string {
	return s.path
}

// Adopt takes ownership of path as the new location of the scratch bytes,
// removing the previous file when it differs.
func (s *ScratchFile) Adopt(path string) error {
	if path == s.path {
		return nil
	}
	old := s.path
	s.path = path
	if old == "" {
		return nil
	}
	if err := os.Remove(old); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Remove deletes the scratch file. Safe to call more than once.
func (s *ScratchFile) Remove() error {
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	s.path = ""
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
