// Package vertex holds the per-vertex classification of canonical k-mers
// and the hash table that maps each one to a compact, atomically updatable
// state cell.
package vertex

import "github.com/mudesheng/cdbg/internal/kmer"

// Degree summarizes how many valid neighbors a canonical k-mer has on one
// side, in its own canonical orientation.
type Degree uint8

const (
	None  Degree = 0
	One   Degree = 1
	Multi Degree = 2
)

// Class labels a canonical k-mer's neighborhood: the (left, right) pair of
// Degree summaries, packed into one byte. It is computed once per vertex
// before any walker runs and is read-only afterwards; only the outputted
// bit of State mutates during emission.
type Class uint8

func MakeClass(left, right Degree) Class {
	return Class((uint8(left) << 2) | uint8(right))
}

func (c Class) Left() Degree  { return Degree(uint8(c) >> 2) }
func (c Class) Right() Degree { return Degree(uint8(c) & 0x3) }

// Neighbor bundles a vertex's class together with the traversal direction
// it's being viewed from. A canonical k-mer's neighbor degrees are stored
// in its own canonical orientation; a visitor arriving in BWD direction
// sees them mirrored, so "in"/"out" depend on Dir.
type Neighbor struct {
	Class Class
	Dir   kmer.Dir
}

func (n Neighbor) inDegree() Degree {
	if n.Dir == kmer.FWD {
		return n.Class.Left()
	}
	return n.Class.Right()
}

func (n Neighbor) outDegree() Degree {
	if n.Dir == kmer.FWD {
		return n.Class.Right()
	}
	return n.Class.Left()
}

// IsUnipathStart reports whether a maximal unitig starts at cur when
// arriving from prev: true iff cur has >1 valid in-neighbor in cur's
// orientation, or prev has >1 valid out-neighbor in prev's orientation.
// A unitig starts where the in-degree-1 chain is broken on the left.
func IsUnipathStart(cur, prev Neighbor) bool {
	return cur.inDegree() == Multi || prev.outDegree() == Multi
}

// IsUnipathEnd is the symmetric predicate on the right side.
func IsUnipathEnd(cur, next Neighbor) bool {
	return cur.outDegree() == Multi || next.inDegree() == Multi
}

// State is the per-vertex mutable record: the final neighborhood class
// plus the outputted flag, which only ever goes false to true within a
// run.
type State struct {
	Class     Class
	Outputted bool
}

// IsOutputted reports whether some thread has already emitted the unitig
// this vertex identifies.
func (s State) IsOutputted() bool { return s.Outputted }

// MarkOutputted returns a copy of s with the outputted bit set.
func (s State) MarkOutputted() State {
	s.Outputted = true
	return s
}
