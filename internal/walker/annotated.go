// Package walker locates and emits maximal unitigs: each worker sweeps a
// substring range of one sequence, consulting the vertex table per k-mer
// and appending formatted GFA records to its private buffer and spools.
package walker

import (
	"fmt"

	"github.com/mudesheng/cdbg/internal/kmer"
	"github.com/mudesheng/cdbg/internal/vertex"
)

// Annotated carries everything the walk needs to know about one k-mer
// occurrence: its spelling, canonical form, reverse complement, position
// in the parent sequence, direction, and vertex class.
type Annotated struct {
	Kmer      kmer.Kmer
	Canonical kmer.Kmer
	RevComp   kmer.Kmer
	Idx       int
	Dir       kmer.Dir
	Class     vertex.Class
}

// classify looks up the vertex class for a canonical k-mer. A missing
// entry means the table was not built over this input; the caller
// escalates it as a fatal worker error.
func classify(tb *vertex.Table, canonical kmer.Kmer) (vertex.Class, error) {
	id, ok := tb.BucketID(canonical)
	if !ok {
		return 0, fmt.Errorf("vertex table has no entry for canonical k-mer %q", canonical)
	}
	return tb.Class(id), nil
}

// annotate builds the Annotated tuple for seq[idx:idx+k].
func annotate(tb *vertex.Table, seq []byte, idx, k int) (Annotated, error) {
	km := kmer.KmerAt(seq, idx, k)
	canon := kmer.Canonical(km)
	rc := kmer.ReverseComplement(km)
	class, err := classify(tb, canon)
	if err != nil {
		return Annotated{}, err
	}
	return Annotated{
		Kmer:      km,
		Canonical: canon,
		RevComp:   rc,
		Idx:       idx,
		Dir:       kmer.DirOf(km, canon),
		Class:     class,
	}, nil
}

// rollTo advances an Annotated tuple to the next position, reusing the
// roller's one-base shift and re-deriving the vertex class for the new
// canonical k-mer.
func rollTo(tb *vertex.Table, prev Annotated, seq []byte, nextIdx int, nextSymbol byte) (Annotated, error) {
	r := kmer.Roller{K: len(prev.Kmer), Kmer: prev.Kmer, RevComp: prev.RevComp}
	r.RollToNext(nextSymbol)
	canon := r.Canonical()
	class, err := classify(tb, canon)
	if err != nil {
		return Annotated{}, err
	}
	return Annotated{
		Kmer:      r.Kmer,
		Canonical: canon,
		RevComp:   r.RevComp,
		Idx:       nextIdx,
		Dir:       r.Dir(),
		Class:     class,
	}, nil
}

// neighbor returns the (Class, Dir) pair the vertex predicates need.
func neighbor(a Annotated) vertex.Neighbor {
	return vertex.Neighbor{Class: a.Class, Dir: a.Dir}
}

// OrientedUnitig identifies one emitted unitig occurrence: its id, its
// orientation at this site, and the positions of its flanking k-mers in
// the parent sequence. Valid is false for the empty/unset witness slots.
type OrientedUnitig struct {
	Valid            bool
	ID               uint64
	Dir              kmer.Dir
	StartIdx, EndIdx int
}

// Witness holds the first, second, and last oriented unitigs a thread has
// emitted for the current sequence. The stitcher reads them after the
// join barrier to resolve boundary links and the path head.
type Witness struct {
	First, Second, Last OrientedUnitig
}
