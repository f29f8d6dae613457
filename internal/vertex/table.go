package vertex

import (
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/dgryski/go-metro"

	"github.com/mudesheng/cdbg/internal/kmer"
)

// cell packs a State into one word: the low byte holds Class, bit 8 holds
// Outputted. Keeping the whole state in a single word-aligned cell lets
// walkers update it with one CAS instead of a mutex.
type cell = uint32

const outputtedBit = uint32(1) << 8

func packState(s State) cell {
	v := uint32(s.Class)
	if s.Outputted {
		v |= outputtedBit
	}
	return v
}

func unpackState(v cell) State {
	return State{
		Class:     Class(v & 0xFF),
		Outputted: v&outputtedBit != 0,
	}
}

// Table maps canonical k-mers to mutable state slots. BucketID is a pure,
// total, deterministic function once Build has run; classes are installed
// by a single-threaded construction pass before any walker starts. The
// walkers only ever mutate the Outputted bit afterwards, via CAS.
type Table struct {
	cells   []atomic.Uint32
	buckets map[kmer.Kmer]uint64
	seed    uint64
}

// NewTable allocates an empty table with room for n canonical k-mers.
// Call Build once, single-threaded, before handing the table to walkers.
func NewTable(n int) *Table {
	return &Table{
		cells:   make([]atomic.Uint32, n),
		buckets: make(map[kmer.Kmer]uint64, n),
		seed:    0x9E3779B97F4A7C15,
	}
}

// Build assigns every canonical k-mer in kmers a total, deterministic
// bucket id in [0, Len()), resolving xxhash collisions with a
// metro-hash rehash jump. Build is single-threaded and must complete
// before any concurrent Load/Update calls.
func (t *Table) Build(kmers []kmer.Kmer) {
	n := uint64(len(t.cells))
	taken := make([]bool, n)

	for _, km := range kmers {
		if _, ok := t.buckets[km]; ok {
			continue
		}
		h := xxhash.Sum64String(string(km)) % n
		if taken[h] {
			// one key-dependent rehash jump, then linear probing, which
			// terminates as long as any slot is free
			h = (h + 1 + metro.Hash64([]byte(km), t.seed)%n) % n
			for taken[h] {
				h = (h + 1) % n
			}
		}
		taken[h] = true
		t.buckets[km] = h
	}
}

// BucketID maps a canonical k-mer to its bucket index. It is a read-only
// lookup into the table Build populated, safe for concurrent callers.
func (t *Table) BucketID(canonical kmer.Kmer) (uint64, bool) {
	id, ok := t.buckets[canonical]
	return id, ok
}

// StateHandle is a Load result: the observed state plus an opaque update
// token (the old packed word) that Update uses for its compare-and-swap.
type StateHandle struct {
	bucket uint64
	old    cell
	State  State
}

// Load returns the current state of the given bucket plus an update token.
func (t *Table) Load(bucket uint64) StateHandle {
	old := t.cells[bucket].Load()
	return StateHandle{bucket: bucket, old: old, State: unpackState(old)}
}

// Update attempts to commit handle.State back to its bucket via CAS,
// succeeding only if no other thread has changed the slot since Load.
// It does not retry: a caller that loses the race simply observes false
// and abandons the emission, so every slot transition happens exactly
// once across all threads.
func (t *Table) Update(handle StateHandle) bool {
	return t.cells[handle.bucket].CompareAndSwap(handle.old, packState(handle.State))
}

// SetClass installs the pre-computed class for bucket during the
// construction phase. Like Build, it is not synchronized against
// concurrent Load/Update and must complete first.
func (t *Table) SetClass(bucket uint64, c Class) {
	t.cells[bucket].Store(uint32(c))
}

// Class returns the class currently stored for bucket.
func (t *Table) Class(bucket uint64) Class {
	return unpackState(t.cells[bucket].Load()).Class
}

// Len reports the number of buckets in the table.
func (t *Table) Len() int { return len(t.cells) }
