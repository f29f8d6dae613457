package walker

import (
	"fmt"

	"github.com/mudesheng/cdbg/internal/gfa"
	"github.com/mudesheng/cdbg/internal/kmer"
	"github.com/mudesheng/cdbg/internal/spool"
	"github.com/mudesheng/cdbg/internal/vertex"
)

// Worker owns everything one shard of one sequence needs: the shared hash
// table, its private output buffer and path/overlap spools, and the
// witnesses it accumulates as it emits unitigs.
type Worker struct {
	ThreadID int
	Table    *vertex.Table
	K        int
	Buf      *spool.Buffer
	Path     *spool.Spool
	Overlap  *spool.Spool

	Witness Witness
}

// Walk processes the index range [left, right] of seq, where both bounds
// are valid k-mer start positions. It is the per-shard entry point.
func (w *Worker) Walk(seq []byte, left, right int) error {
	i := left
	for i <= right {
		i = kmer.SearchValidKmer(seq, i, right, w.K)
		if i > right {
			break
		}
		next, err := w.walkMaximal(seq, right, i)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

// walkMaximal processes one maximal placeholder-free run beginning at i
// and returns the non-inclusive ending index of the processed run.
func (w *Worker) walkMaximal(seq []byte, right, i int) (int, error) {
	k := w.K
	seqLen := len(seq)

	cur, err := annotate(w.Table, seq, i, k)
	if err != nil {
		return 0, err
	}

	hasLeft := i > 0 && kmer.IsValidBase(seq[i-1])
	hasRight := i+k < seqLen && kmer.IsValidBase(seq[i+k])

	// Isolated k-mer, no valid neighbor on either side.
	if !hasLeft && !hasRight {
		if err := w.emit(seq, cur, cur); err != nil {
			return 0, err
		}
		return i + k, nil
	}

	// No valid right neighbor, but a valid left one: cur is the tail of
	// some unitig, and is its own unitig only when a start falls here.
	if !hasRight {
		prev, err := annotate(w.Table, seq, i-1, k)
		if err != nil {
			return 0, err
		}
		if vertex.IsUnipathStart(neighbor(cur), neighbor(prev)) {
			if err := w.emit(seq, cur, cur); err != nil {
				return 0, err
			}
		}
		return i + k, nil
	}

	// A valid right neighbor exists (there may or may not be a valid
	// left one too).
	next, err := rollTo(w.Table, cur, seq, i+1, seq[i+k])
	if err != nil {
		return 0, err
	}

	var onUnipath bool
	var start Annotated

	if !hasLeft {
		onUnipath, start = true, cur
	} else {
		prev, err := annotate(w.Table, seq, i-1, k)
		if err != nil {
			return 0, err
		}
		if vertex.IsUnipathStart(neighbor(cur), neighbor(prev)) {
			onUnipath, start = true, cur
		}
	}

	if onUnipath && vertex.IsUnipathEnd(neighbor(cur), neighbor(next)) {
		if err := w.emit(seq, start, cur); err != nil {
			return 0, err
		}
		onUnipath = false
	}

	// Advance past i, overshooting `right` while a unipath is still open:
	// the shard containing a unitig's leftmost k-mer walks it to its
	// natural end, so every unitig is walked to completion by exactly one
	// shard. A shard that enters its range mid-unitig never satisfies the
	// start predicate there and emits nothing for it.
	idx := i + 1
	var prev Annotated
	for onUnipath || idx <= right {
		prev, cur = cur, next

		if vertex.IsUnipathStart(neighbor(cur), neighbor(prev)) {
			onUnipath, start = true, cur
		}

		if idx+k == seqLen || !kmer.IsValidBase(seq[idx+k]) {
			if onUnipath {
				if err := w.emit(seq, start, cur); err != nil {
					return 0, err
				}
				onUnipath = false
			}
			return idx + k, nil
		}

		next, err = rollTo(w.Table, cur, seq, idx+1, seq[idx+k])
		if err != nil {
			return 0, err
		}
		if onUnipath && vertex.IsUnipathEnd(neighbor(cur), neighbor(next)) {
			if err := w.emit(seq, start, cur); err != nil {
				return 0, err
			}
			onUnipath = false
		}

		idx++
	}

	return idx + k, nil
}

// emit handles one located unitig. The unitig is named by the bucket id
// of the lexicographically smaller of its two flanking canonical k-mers,
// so every thread that encounters it — from either side, in either
// direction — resolves the same slot. The CAS on that slot's outputted
// bit decides which single thread writes the S record; losing the race is
// not an error, the winner's record covers everyone. Links and path
// fragments are per-site and always recorded.
func (w *Worker) emit(seq []byte, start, end Annotated) error {
	minFlanking := start.Canonical
	if end.Canonical < minFlanking {
		minFlanking = end.Canonical
	}
	bucket, ok := w.Table.BucketID(minFlanking)
	if !ok {
		return fmt.Errorf("walker: no bucket for flanking k-mer %q", minFlanking)
	}

	handle := w.Table.Load(bucket)
	if !handle.State.IsOutputted() {
		handle.State = handle.State.MarkOutputted()
		if w.Table.Update(handle) {
			line, err := gfa.SegmentLine(seq, bucket, start.Idx, end.Idx, w.K, unitigDir(start, end))
			if err != nil {
				return err
			}
			if err := w.Buf.Write(line); err != nil {
				return err
			}
		}
	}

	current := OrientedUnitig{Valid: true, ID: bucket, Dir: unitigDir(start, end), StartIdx: start.Idx, EndIdx: end.Idx}

	if !w.Witness.First.Valid {
		w.Witness.First = current
	} else if !w.Witness.Second.Valid {
		w.Witness.Second = current
	}

	if w.Witness.Last.Valid {
		prevUnitig := w.Witness.Last
		if err := w.Buf.Write(gfa.LinkLine(prevUnitig.ID, prevUnitig.Dir, current.ID, current.Dir, gfa.Overlap(prevUnitig.EndIdx, current.StartIdx, w.K))); err != nil {
			return err
		}
		if err := appendLinkToPath(w.Path, w.Overlap, prevUnitig, current, w.K); err != nil {
			return err
		}
	}

	w.Witness.Last = current
	return nil
}

// unitigDir fixes a unitig's orientation at an emission site: FWD iff the
// start k-mer reads lexicographically below the end k-mer's reverse
// complement. The comparison is independent of which direction the unitig
// was walked, so concurrent threads observing the same unitig from
// opposite ends agree on its spelling.
func unitigDir(start, end Annotated) kmer.Dir {
	if start.Kmer < end.RevComp {
		return kmer.FWD
	}
	return kmer.BWD
}

// appendLinkToPath appends the destination unitig's segment name and the
// link's overlap to the thread-local path/overlap spools. The sequence's
// very first unitig is deliberately absent from the spools; the stitcher
// supplies it from the witnesses when assembling the path record.
func appendLinkToPath(path, overlap *spool.Spool, from, to OrientedUnitig, k int) error {
	if err := path.Append("," + gfa.SegmentName(to.ID, to.Dir)); err != nil {
		return err
	}
	ov := gfa.Overlap(from.EndIdx, to.StartIdx, k)
	if err := overlap.Append(fmt.Sprintf(",%dM", ov)); err != nil {
		return err
	}
	return nil
}
