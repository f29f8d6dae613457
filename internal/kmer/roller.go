package kmer

// Roller tracks the forward and reverse-complement spelling of a sliding
// k-mer window (the canonical form is derived from the two on demand) and
// updates both as the window moves one base to the right. Each step builds
// two new k-byte strings, so a step costs O(k), not O(1).
type Roller struct {
	K       int
	Kmer    Kmer
	RevComp Kmer
}

// NewRoller builds a roller positioned at seq[i : i+k]. seq[i:i+k] must be
// placeholder-free.
func NewRoller(seq []byte, i, k int) Roller {
	km := KmerAt(seq, i, k)
	return Roller{K: k, Kmer: km, RevComp: ReverseComplement(km)}
}

// Canonical returns the canonical form of the roller's current k-mer.
func (r Roller) Canonical() Kmer {
	if r.Kmer <= r.RevComp {
		return r.Kmer
	}
	return r.RevComp
}

// Dir reports FWD iff the current k-mer equals its canonical form.
func (r Roller) Dir() Dir {
	return DirOf(r.Kmer, r.Canonical())
}

// RollToNext shifts the window one base to the right, dropping Kmer[0] and
// appending next. next must be a valid base.
func (r *Roller) RollToNext(next byte) {
	comp, _ := Complement(next)

	fwd := make([]byte, r.K)
	copy(fwd, r.Kmer[1:])
	fwd[r.K-1] = next
	r.Kmer = Kmer(fwd)

	rc := make([]byte, r.K)
	rc[0] = comp
	copy(rc[1:], r.RevComp[:r.K-1])
	r.RevComp = Kmer(rc)
}

// SearchValidKmer returns the smallest i in [from, to] such that
// seq[i:i+k) contains no placeholder; if none exists, it returns to+1.
// On hitting a placeholder at j it skips the next candidate start directly
// to j+1, since every start in (i, j] would still cover the same
// placeholder.
func SearchValidKmer(seq []byte, from, to, k int) int {
	i := from
	for i <= to {
		end := i + k - 1
		if end >= len(seq) {
			return to + 1
		}
		bad := -1
		for j := i; j <= end; j++ {
			if !IsValidBase(seq[j]) {
				bad = j
				break
			}
		}
		if bad < 0 {
			return i
		}
		i = bad + 1
	}
	return to + 1
}
