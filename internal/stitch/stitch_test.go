package stitch

import (
	"strings"
	"testing"

	"github.com/mudesheng/cdbg/internal/kmer"
	"github.com/mudesheng/cdbg/internal/sink"
	"github.com/mudesheng/cdbg/internal/spool"
	"github.com/mudesheng/cdbg/internal/walker"
)

type memSink struct {
	b strings.Builder
}

func (m *memSink) Write(s string) error { m.b.WriteString(s); return nil }
func (m *memSink) Flush() error         { return nil }
func (m *memSink) Close() error         { return nil }

var _ sink.Sink = (*memSink)(nil)

func TestResolveInterThreadLinksAdjacentShards(t *testing.T) {
	dir := t.TempDir()
	var s0, s1 memSink
	buf0 := spool.NewBuffer(0, 1<<20, &s0)
	buf1 := spool.NewBuffer(1, 1<<20, &s1)

	path0, err := spool.Open(dir, "path", 0)
	if err != nil {
		t.Fatal(err)
	}
	path1, err := spool.Open(dir, "path", 1)
	if err != nil {
		t.Fatal(err)
	}
	overlap0, err := spool.Open(dir, "overlap", 0)
	if err != nil {
		t.Fatal(err)
	}
	overlap1, err := spool.Open(dir, "overlap", 1)
	if err != nil {
		t.Fatal(err)
	}

	last0 := walker.OrientedUnitig{Valid: true, ID: 5, Dir: kmer.FWD, StartIdx: 0, EndIdx: 3}
	first1 := walker.OrientedUnitig{Valid: true, ID: 9, Dir: kmer.BWD, StartIdx: 4, EndIdx: 6}
	witnesses := []walker.Witness{
		{Last: last0},
		{First: first1},
	}

	if err := ResolveInterThreadLinks([]*spool.Buffer{buf0, buf1}, witnesses, []*spool.Spool{path0, path1}, []*spool.Spool{overlap0, overlap1}, 3); err != nil {
		t.Fatal(err)
	}
	if err := buf1.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := "L\t5\t+\t9\t-\t2M\n"; s1.b.String() != want {
		t.Fatalf("link written to wrong buffer or wrong text: got %q want %q", s1.b.String(), want)
	}
	if s0.b.Len() != 0 {
		t.Fatalf("link should not land in the left shard's buffer, got %q", s0.b.String())
	}

	if err := path0.Close(); err != nil {
		t.Fatal(err)
	}
	if err := overlap0.Close(); err != nil {
		t.Fatal(err)
	}
	var pb, ob strings.Builder
	if err := path0.CopyInto(&pb); err != nil {
		t.Fatal(err)
	}
	if err := overlap0.CopyInto(&ob); err != nil {
		t.Fatal(err)
	}
	if pb.String() != ",9-" {
		t.Fatalf("path fragment landed on wrong (or wrong-content) spool: got %q", pb.String())
	}
	if ob.String() != ",2M" {
		t.Fatalf("overlap fragment got %q", ob.String())
	}
}

func TestFirstLinkAcrossThreads(t *testing.T) {
	u1 := walker.OrientedUnitig{Valid: true, ID: 1}
	u2 := walker.OrientedUnitig{Valid: true, ID: 2}
	witnesses := []walker.Witness{
		{},
		{First: u1},
		{First: u2},
	}
	first, second := FirstLink(witnesses)
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("got first=%+v second=%+v", first, second)
	}
}

func TestFirstLinkSameThreadFirstAndSecond(t *testing.T) {
	u1 := walker.OrientedUnitig{Valid: true, ID: 1}
	u2 := walker.OrientedUnitig{Valid: true, ID: 2}
	witnesses := []walker.Witness{
		{First: u1, Second: u2},
	}
	first, second := FirstLink(witnesses)
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("got first=%+v second=%+v", first, second)
	}
}

func TestWritePathNoUnitigsIsNoop(t *testing.T) {
	var s memSink
	if err := WritePath(&s, 1, 3, []walker.Witness{{}}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if s.b.Len() != 0 {
		t.Fatalf("expected no output, got %q", s.b.String())
	}
}

func TestWritePathSingleUnitigNoOverlap(t *testing.T) {
	dir := t.TempDir()
	path0, err := spool.Open(dir, "path", 0)
	if err != nil {
		t.Fatal(err)
	}
	overlap0, err := spool.Open(dir, "overlap", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := path0.Close(); err != nil {
		t.Fatal(err)
	}
	if err := overlap0.Close(); err != nil {
		t.Fatal(err)
	}

	u1 := walker.OrientedUnitig{Valid: true, ID: 7, Dir: kmer.FWD}
	witnesses := []walker.Witness{{First: u1}}

	var s memSink
	if err := WritePath(&s, 2, 3, witnesses, []*spool.Spool{path0}, []*spool.Spool{overlap0}); err != nil {
		t.Fatal(err)
	}
	want := "P\tP2\t7+\t*\n"
	if s.b.String() != want {
		t.Fatalf("got %q want %q", s.b.String(), want)
	}
}

func TestWritePathConcatenatesSpoolsInThreadOrder(t *testing.T) {
	dir := t.TempDir()
	var paths, overlaps []*spool.Spool
	for i := 0; i < 2; i++ {
		p, err := spool.Open(dir, "path", i)
		if err != nil {
			t.Fatal(err)
		}
		o, err := spool.Open(dir, "overlap", i)
		if err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
		overlaps = append(overlaps, o)
	}
	if err := paths[0].Append(",2+"); err != nil {
		t.Fatal(err)
	}
	if err := overlaps[0].Append(",2M"); err != nil {
		t.Fatal(err)
	}
	if err := paths[1].Append(",3-"); err != nil {
		t.Fatal(err)
	}
	if err := overlaps[1].Append(",0M"); err != nil {
		t.Fatal(err)
	}
	for _, p := range paths {
		if err := p.Close(); err != nil {
			t.Fatal(err)
		}
	}
	for _, o := range overlaps {
		if err := o.Close(); err != nil {
			t.Fatal(err)
		}
	}

	u1 := walker.OrientedUnitig{Valid: true, ID: 1, Dir: kmer.FWD, EndIdx: 0}
	u2 := walker.OrientedUnitig{Valid: true, ID: 2, Dir: kmer.FWD, StartIdx: 1}
	witnesses := []walker.Witness{{First: u1, Second: u2}}

	var s memSink
	if err := WritePath(&s, 5, 3, witnesses, paths, overlaps); err != nil {
		t.Fatal(err)
	}
	want := "P\tP5\t1+,2+,3-\t2M,2M,0M\n"
	if s.b.String() != want {
		t.Fatalf("got %q want %q", s.b.String(), want)
	}
}
