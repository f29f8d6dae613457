// Package stitch joins the shards of one sequence after all its workers
// have finished: it resolves links that cross thread boundaries and
// assembles the sequence's GFA Path record from the per-thread spools plus
// the first/second/last witnesses.
package stitch

import (
	"fmt"
	"io"

	"github.com/mudesheng/cdbg/internal/gfa"
	"github.com/mudesheng/cdbg/internal/sink"
	"github.com/mudesheng/cdbg/internal/spool"
	"github.com/mudesheng/cdbg/internal/walker"
	"github.com/mudesheng/cdbg/utils"
)

// ResolveInterThreadLinks scans the threads' witnesses in ascending order
// and, for every boundary where one shard's last unitig is followed (in
// thread order) by another shard's first, emits the crossing L-record and
// its path/overlap fragment.
//
// The L-record is written into the buffer of the *right* shard (the one
// whose first unitig is the link's destination) but the path/overlap
// fragment is appended to the spool of the *left* shard: the sequence's
// path stream is the left-to-right concatenation of per-thread spools,
// and the fragment belongs right after the segment it follows.
func ResolveInterThreadLinks(buffers []*spool.Buffer, witnesses []walker.Witness, paths, overlaps []*spool.Spool, k int) error {
	var left walker.OrientedUnitig
	leftT := -1

	for t := range witnesses {
		if !left.Valid {
			if witnesses[t].Last.Valid {
				left, leftT = witnesses[t].Last, t
			}
			continue
		}

		if witnesses[t].First.Valid {
			right := witnesses[t].First
			line := gfa.LinkLine(left.ID, left.Dir, right.ID, right.Dir, gfa.Overlap(left.EndIdx, right.StartIdx, k))
			if err := buffers[t].Write(line); err != nil {
				return fmt.Errorf("stitch: write inter-thread link: %w", err)
			}
			if err := appendLinkFragment(paths[leftT], overlaps[leftT], left, right, k); err != nil {
				return err
			}

			left, leftT = witnesses[t].Last, t
		}
	}
	return nil
}

func appendLinkFragment(path, overlap *spool.Spool, from, to walker.OrientedUnitig, k int) error {
	if err := path.Append("," + gfa.SegmentName(to.ID, to.Dir)); err != nil {
		return err
	}
	ov := gfa.Overlap(from.EndIdx, to.StartIdx, k)
	return overlap.Append(fmt.Sprintf(",%dM", ov))
}

// FirstLink finds the sequence's very first and second oriented unitigs
// across all threads. Neither is inferable from the per-thread path
// spools, which only ever record a link's destination.
func FirstLink(witnesses []walker.Witness) (first, second walker.OrientedUnitig) {
	for _, w := range witnesses {
		if w.First.Valid {
			if !first.Valid {
				first = w.First
			} else {
				second = w.First
				return first, second
			}
		}
		if w.Second.Valid {
			second = w.Second
			return first, second
		}
	}
	return first, second
}

// WritePath writes the single P-record for a sequence: the header up to
// and including the first segment name, then the concatenation of every
// thread's path spool in ascending order, then the overlap column and the
// concatenation of every overlap spool.
//
// If the sequence produced no unitig (no valid first witness), WritePath
// writes nothing and returns nil.
func WritePath(out sink.Sink, seqNo, k int, witnesses []walker.Witness, paths, overlaps []*spool.Spool) error {
	first, second := FirstLink(witnesses)
	if !first.Valid {
		return nil
	}

	var buf pathBuilder
	buf.WriteString(gfa.PathHeader(seqNo, first.ID, first.Dir))
	for t := range paths {
		if err := paths[t].CopyInto(&buf); err != nil {
			return err
		}
	}

	buf.WriteString("\t")
	buf.WriteString(gfa.PathOverlapField(second.Valid, gfa.Overlap(first.EndIdx, second.StartIdx, k)))
	for t := range overlaps {
		if err := overlaps[t].CopyInto(&buf); err != nil {
			return err
		}
	}
	buf.WriteString("\n")

	return out.Write(buf.String())
}

type pathBuilder struct {
	data []byte
}

func (p *pathBuilder) WriteString(s string) (int, error) {
	p.data = append(p.data, s...)
	return len(s), nil
}

func (p *pathBuilder) Write(b []byte) (int, error) {
	p.data = append(p.data, b...)
	return len(b), nil
}

func (p *pathBuilder) String() string { return utils.Bytes2String(p.data) }

var _ io.Writer = (*pathBuilder)(nil)
