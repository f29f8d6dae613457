package spool

import (
	"strings"
	"testing"
)

type memSink struct {
	b strings.Builder
}

func (m *memSink) Write(s string) error { m.b.WriteString(s); return nil }
func (m *memSink) Flush() error         { return nil }
func (m *memSink) Close() error         { return nil }

func TestBufferFlushesAtThreshold(t *testing.T) {
	var s memSink
	buf := NewBuffer(0, 8, &s)

	if err := buf.Write("1234"); err != nil {
		t.Fatal(err)
	}
	if s.b.Len() != 0 {
		t.Fatalf("should not have flushed yet, buffered=%q sink=%q", "1234", s.b.String())
	}
	if err := buf.Write("5678"); err != nil {
		t.Fatal(err)
	}
	if s.b.String() != "12345678" {
		t.Fatalf("expected flush at threshold, sink=%q", s.b.String())
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer should be empty after flush")
	}
}

func TestBufferFlushPreservesOrder(t *testing.T) {
	var s memSink
	buf := NewBuffer(0, 1000, &s)
	for _, rec := range []string{"a", "b", "c"} {
		if err := buf.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := buf.Flush(); err != nil {
		t.Fatal(err)
	}
	if s.b.String() != "abc" {
		t.Fatalf("order not preserved: %q", s.b.String())
	}
}

func TestSpoolAppendAndCopy(t *testing.T) {
	dir := t.TempDir()
	sp, err := Open(dir, "path", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := sp.Append(",5+"); err != nil {
		t.Fatal(err)
	}
	if err := sp.Append(",6-"); err != nil {
		t.Fatal(err)
	}
	if err := sp.Close(); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := sp.CopyInto(&out); err != nil {
		t.Fatal(err)
	}
	if out.String() != ",5+,6-" {
		t.Fatalf("got %q", out.String())
	}

	if err := sp.Remove(); err != nil {
		t.Fatal(err)
	}
}
