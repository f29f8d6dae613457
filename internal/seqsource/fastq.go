package seqsource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// FastqSource reads short-read records off a FASTQ file, dropping the
// quality string: the walker only consumes bases, and any base the
// sequencer was unsure enough about to call as something outside ACGT is
// already a placeholder to the roller.
type FastqSource struct {
	f *os.File
	r *fastq.Reader
}

// OpenFastq opens path for reading.
func OpenFastq(path string) (*FastqSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seqsource: open %q: %w", path, err)
	}
	r := fastq.NewReader(f, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger))
	return &FastqSource{f: f, r: r}, nil
}

// Next returns the next read, or ok=false once the file is exhausted.
func (s *FastqSource) Next() (Sequence, bool, error) {
	rec, err := s.r.Read()
	if err != nil {
		if err == io.EOF {
			return Sequence{}, false, nil
		}
		return Sequence{}, false, fmt.Errorf("seqsource: read %q: %w", s.f.Name(), err)
	}

	q := rec.(*linear.QSeq)
	bases := make([]byte, len(q.Seq))
	for i, letter := range q.Seq {
		bases[i] = byte(letter.L)
	}
	return Sequence{Name: q.ID, Bases: bases}, true, nil
}

// Close releases the underlying file handle.
func (s *FastqSource) Close() error {
	return s.f.Close()
}

var _ Source = (*FastqSource)(nil)

// Open picks the reader for path by extension: .fq/.fastq get the FASTQ
// reader, everything else is treated as FASTA.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fq", ".fastq":
		return OpenFastq(path)
	default:
		return OpenFasta(path)
	}
}
