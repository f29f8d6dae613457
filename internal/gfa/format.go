// Package gfa formats GFA 1.0 records: S/L/P lines, orientation signs,
// overlap CIGARs, and orientation-aware segment spelling.
package gfa

import (
	"fmt"
	"strings"

	"github.com/mudesheng/cdbg/internal/kmer"
)

// Header is the single GFA 1.0 header line, written once at the start of
// the output file.
const Header = "H\tVN:Z:1.0"

// Complement returns the complementary base of b (A<->T, C<->G). Any
// other byte is a formatting error: the walker filters placeholders out
// of emitted segments before this is ever called.
func Complement(b byte) (byte, error) {
	c, ok := kmer.Complement(b)
	if !ok {
		return 0, fmt.Errorf("gfa: cannot complement non-ACGT byte %q", b)
	}
	return c, nil
}

// Segment spells seq[startIdx : endIdx+k-1] in the given orientation: FWD
// reads it forward, BWD reads the reverse complement of the same range.
func Segment(seq []byte, startIdx, endIdx, k int, dir kmer.Dir) (string, error) {
	lo, hi := startIdx, endIdx+k-1 // inclusive range
	if dir == kmer.FWD {
		return string(seq[lo : hi+1]), nil
	}

	out := make([]byte, hi-lo+1)
	for idx := hi; idx >= lo; idx-- {
		c, err := Complement(seq[idx])
		if err != nil {
			return "", err
		}
		out[hi-idx] = c
	}
	return string(out), nil
}

// SegmentLine formats an S line; length and k-mer count are derived from
// the flanking k-mer indices and k.
func SegmentLine(seq []byte, id uint64, startIdx, endIdx, k int, dir kmer.Dir) (string, error) {
	spelling, err := Segment(seq, startIdx, endIdx, k, dir)
	if err != nil {
		return "", err
	}
	length := endIdx - startIdx + k
	kmerCount := endIdx - startIdx + 1
	return fmt.Sprintf("S\t%d\t%s\tLN:i:%d\tKC:i:%d\n", id, spelling, length, kmerCount), nil
}

// Overlap computes the L/P overlap length: k-1 when the two oriented
// unitigs are index-adjacent on the parent sequence, 0 otherwise (the two
// flank a placeholder gap).
func Overlap(fromEndIdx, toStartIdx, k int) int {
	if toStartIdx == fromEndIdx+1 {
		return k - 1
	}
	return 0
}

// LinkLine formats an L line.
func LinkLine(fromID uint64, fromDir kmer.Dir, toID uint64, toDir kmer.Dir, overlap int) string {
	return fmt.Sprintf("L\t%d\t%c\t%d\t%c\t%dM\n", fromID, fromDir.Sign(), toID, toDir.Sign(), overlap)
}

// SegmentName formats the "<id><sign>" token used in both L and P lines.
func SegmentName(id uint64, dir kmer.Dir) string {
	return fmt.Sprintf("%d%c", id, dir.Sign())
}

// PathHeader formats the fixed prefix of a P line up to and including its
// first segment name.
func PathHeader(seqNo int, first uint64, firstDir kmer.Dir) string {
	return fmt.Sprintf("P\tP%d\t%s", seqNo, SegmentName(first, firstDir))
}

// PathOverlapField formats the leading overlap column of a P line: "*" if
// the path holds a single segment, else "<overlap>M".
func PathOverlapField(hasSecond bool, overlap int) string {
	if !hasSecond {
		return "*"
	}
	return fmt.Sprintf("%dM", overlap)
}

// JoinSegmentNames is a small helper for tests that want to assemble an
// expected SegmentNames string without going through the path writer.
func JoinSegmentNames(names ...string) string {
	return strings.Join(names, ",")
}
