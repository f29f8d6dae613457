// Package seqsource adapts sequence files on disk to the simple
// (name, bases) record stream the extractor consumes: a lazy, finite,
// forward-only iterator.
package seqsource

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Sequence is one (name, bases) record handed to the walker.
type Sequence struct {
	Name  string
	Bases []byte
}

// Source is the contract the run loop iterates over.
type Source interface {
	Next() (Sequence, bool, error)
	Close() error
}

// FastaSource reads records off a single FASTA file, one at a time, never
// buffering the whole input in memory.
type FastaSource struct {
	f *os.File
	r *fasta.Reader
}

// OpenFasta opens path for reading.
func OpenFasta(path string) (*FastaSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seqsource: open %q: %w", path, err)
	}
	r := fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA))
	return &FastaSource{f: f, r: r}, nil
}

// Next returns the next record, or ok=false once the file is exhausted.
func (s *FastaSource) Next() (Sequence, bool, error) {
	rec, err := s.r.Read()
	if err != nil {
		if err == io.EOF {
			return Sequence{}, false, nil
		}
		return Sequence{}, false, fmt.Errorf("seqsource: read %q: %w", s.f.Name(), err)
	}

	l := rec.(*linear.Seq)
	bases := make([]byte, len(l.Seq))
	for i, letter := range l.Seq {
		bases[i] = byte(letter)
	}
	return Sequence{Name: l.ID, Bases: bases}, true, nil
}

// Close releases the underlying file handle.
func (s *FastaSource) Close() error {
	return s.f.Close()
}

var _ Source = (*FastaSource)(nil)
