package vertex

import "github.com/mudesheng/cdbg/internal/kmer"

// BuildFromSequences classifies every canonical k-mer of the given
// sequences and returns a populated table, ready for walkers. For each
// side of each canonical k-mer it tracks which of the four bases have been
// observed extending it, recorded in the k-mer's own canonical
// orientation, then folds the mask down to a Degree pair.
func BuildFromSequences(seqs [][]byte, k int) *Table {
	masks := make(map[kmer.Kmer]*neighborMask)
	var order []kmer.Kmer

	observe := func(canon kmer.Kmer) *neighborMask {
		m, ok := masks[canon]
		if !ok {
			m = &neighborMask{}
			masks[canon] = m
			order = append(order, canon)
		}
		return m
	}

	for _, seq := range seqs {
		scanSequence(seq, k, observe)
	}

	t := NewTable(len(order))
	t.Build(order)
	for _, canon := range order {
		id, _ := t.BucketID(canon)
		m := masks[canon]
		t.SetClass(id, MakeClass(degreeOf(m.left), degreeOf(m.right)))
	}
	return t
}

// neighborMask records, per side of a canonical k-mer, which of the four
// bases have been observed extending it in that k-mer's own canonical
// orientation.
type neighborMask struct {
	left, right [4]bool
}

func baseIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	default:
		return -1
	}
}

func degreeOf(mask [4]bool) Degree {
	n := 0
	for _, present := range mask {
		if present {
			n++
		}
	}
	switch {
	case n == 0:
		return None
	case n == 1:
		return One
	default:
		return Multi
	}
}

// scanSequence walks every valid run of seq, calling observe for each
// canonical k-mer it touches and recording that occurrence's left/right
// extension bases, mirrored into canonical orientation when the k-mer was
// seen in BWD direction.
func scanSequence(seq []byte, k int, observe func(kmer.Kmer) *neighborMask) {
	seqLen := len(seq)
	if seqLen < k {
		return
	}

	i := 0
	for i <= seqLen-k {
		i = kmer.SearchValidKmer(seq, i, seqLen-k, k)
		if i > seqLen-k {
			return
		}

		r := kmer.NewRoller(seq, i, k)
		for {
			canon := r.Canonical()
			dir := r.Dir()
			m := observe(canon)

			var leftBase, rightBase byte
			hasLeft := i > 0 && kmer.IsValidBase(seq[i-1])
			if hasLeft {
				leftBase = seq[i-1]
			}
			hasRight := i+k < seqLen && kmer.IsValidBase(seq[i+k])
			if hasRight {
				rightBase = seq[i+k]
			}

			recordExtensions(m, dir, hasLeft, leftBase, hasRight, rightBase)

			if !hasRight {
				break
			}
			r.RollToNext(rightBase)
			i++
		}
		i++
	}
}

// recordExtensions folds one occurrence's sequence-orientation extension
// bases into the canonical-orientation mask: a FWD occurrence records its
// bases directly; a BWD occurrence's left/right swap sides and complement,
// the same mirroring Neighbor.inDegree/outDegree apply when a stored
// Class is read from the other direction.
func recordExtensions(m *neighborMask, dir kmer.Dir, hasLeft bool, leftBase byte, hasRight bool, rightBase byte) {
	if dir == kmer.FWD {
		if hasLeft {
			if idx := baseIndex(leftBase); idx >= 0 {
				m.left[idx] = true
			}
		}
		if hasRight {
			if idx := baseIndex(rightBase); idx >= 0 {
				m.right[idx] = true
			}
		}
		return
	}

	if hasRight {
		if c, ok := kmer.Complement(rightBase); ok {
			if idx := baseIndex(c); idx >= 0 {
				m.left[idx] = true
			}
		}
	}
	if hasLeft {
		if c, ok := kmer.Complement(leftBase); ok {
			if idx := baseIndex(c); idx >= 0 {
				m.right[idx] = true
			}
		}
	}
}
