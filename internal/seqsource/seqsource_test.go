package seqsource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFastaSourceReadsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	data := ">chr1 test\nACGTA\n>chr2\nTTNGA\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenFasta(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	s1, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("first record: ok=%v err=%v", ok, err)
	}
	if s1.Name != "chr1" || string(s1.Bases) != "ACGTA" {
		t.Fatalf("got %q %q", s1.Name, s1.Bases)
	}

	s2, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("second record: ok=%v err=%v", ok, err)
	}
	if string(s2.Bases) != "TTNGA" {
		t.Fatalf("got %q", s2.Bases)
	}

	if _, ok, err := src.Next(); ok || err != nil {
		t.Fatalf("expected clean EOF, ok=%v err=%v", ok, err)
	}
}

func TestFastqSourceReadsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fq")
	data := "@read1\nACGTA\n+\nIIIII\n@read2\nTGCA\n+\nIIII\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, isFastq := src.(*FastqSource); !isFastq {
		t.Fatalf(".fq must select the FASTQ reader, got %T", src)
	}

	s1, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("first record: ok=%v err=%v", ok, err)
	}
	if s1.Name != "read1" || string(s1.Bases) != "ACGTA" {
		t.Fatalf("got %q %q", s1.Name, s1.Bases)
	}
}

func TestOpenMissingFileIsError(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.fa")); err == nil {
		t.Fatal("expected error")
	}
}
