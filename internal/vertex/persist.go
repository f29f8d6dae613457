package vertex

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"github.com/mudesheng/cdbg/internal/kmer"
)

// persisted is the on-disk gob layout for a built Table.
type persisted struct {
	Buckets map[kmer.Kmer]uint64
	Cells   []uint32
	Seed    uint64
}

// Save writes the table to path, gob-encoded and optionally zstd
// compressed.
func Save(t *Table, path string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vertex: create %q: %w", path, err)
	}
	defer f.Close()

	var w io.Writer = f
	var zw *zstd.Encoder
	if compress {
		zw, err = zstd.NewWriter(f, zstd.WithEncoderCRC(false), zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(1))
		if err != nil {
			return fmt.Errorf("vertex: zstd writer %q: %w", path, err)
		}
		w = zw
	}

	cells := make([]uint32, len(t.cells))
	for i := range t.cells {
		cells[i] = t.cells[i].Load()
	}

	if err := gob.NewEncoder(w).Encode(persisted{Buckets: t.buckets, Cells: cells, Seed: t.seed}); err != nil {
		return fmt.Errorf("vertex: encode %q: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("vertex: zstd close %q: %w", path, err)
		}
	}
	return nil
}

// Load reads back a table saved by Save.
func Load(path string, compress bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vertex: open %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compress {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("vertex: zstd reader %q: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var p persisted
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("vertex: decode %q: %w", path, err)
	}

	t := &Table{
		cells:   make([]atomic.Uint32, len(p.Cells)),
		buckets: p.Buckets,
		seed:    p.Seed,
	}
	for i, c := range p.Cells {
		t.cells[i].Store(c)
	}
	return t, nil
}

// Stats is a read-only summary of a table: per-class vertex counts and the
// number of vertices already marked outputted. It reads the flat state
// array only and never traverses the graph.
type Stats struct {
	ByClass   map[Class]int
	Outputted int
	Total     int
}

// ComputeStats summarizes t's current state.
func ComputeStats(t *Table) Stats {
	s := Stats{ByClass: make(map[Class]int), Total: len(t.cells)}
	for i := range t.cells {
		st := unpackState(t.cells[i].Load())
		s.ByClass[st.Class]++
		if st.Outputted {
			s.Outputted++
		}
	}
	return s
}
