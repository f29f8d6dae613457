package spool

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Spool is an append-only temp file under a configured working directory,
// one per thread, accumulating the comma-prefixed per-link fragments of a
// sequence's GFA Path and Overlaps fields.
type Spool struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// Open creates (or truncates) "<workingDir>/<prefix>.<threadID>".
func Open(workingDir, prefix string, threadID int) (*Spool, error) {
	path := filepath.Join(workingDir, fmt.Sprintf("%s.%d", prefix, threadID))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("spool: open %q: %w", path, err)
	}
	return &Spool{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one fragment (already comma-prefixed by the caller).
func (s *Spool) Append(fragment string) error {
	if _, err := s.w.WriteString(fragment); err != nil {
		return fmt.Errorf("spool: write %q: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file. Buffered write errors
// surface here.
func (s *Spool) Close() error {
	s.closed = true
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("spool: flush %q: %w", s.path, err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("spool: close %q: %w", s.path, err)
	}
	return nil
}

// CopyInto copies the spool's full contents (read back from disk) into w.
// Pending buffered writes are flushed first so the read-back always sees
// every appended fragment.
func (s *Spool) CopyInto(w io.Writer) error {
	if !s.closed {
		if err := s.w.Flush(); err != nil {
			return fmt.Errorf("spool: flush %q: %w", s.path, err)
		}
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("spool: reopen %q: %w", s.path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("spool: copy %q: %w", s.path, err)
	}
	return nil
}

// Remove deletes the spool file. Callers treat a failure here as
// non-fatal cleanup noise: log and continue.
func (s *Spool) Remove() error {
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("spool: remove %q: %w", s.path, err)
	}
	return nil
}
