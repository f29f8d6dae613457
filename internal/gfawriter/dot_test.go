package gfawriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDot(t *testing.T) {
	dir := t.TempDir()
	gfaPath := filepath.Join(dir, "out.gfa")
	dotPath := filepath.Join(dir, "out.dot")

	gfa := "H\tVN:Z:1.0\n" +
		"S\t1\tACGTA\tLN:i:5\tKC:i:3\n" +
		"S\t2\tTGA\tLN:i:3\tKC:i:1\n" +
		"L\t1\t+\t2\t-\t2M\n" +
		"P\tP1\t1+,2-\t2M\n"
	if err := os.WriteFile(gfaPath, []byte(gfa), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteDot(gfaPath, dotPath); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(out)
	if !strings.Contains(dot, "digraph G") {
		t.Fatalf("not a directed graph: %q", dot)
	}
	for _, want := range []string{"1->2", "ID:1 len:5", "ID:2 len:3"} {
		if !strings.Contains(dot, want) {
			t.Fatalf("dot output missing %q:\n%s", want, dot)
		}
	}
}

func TestWriteDotMissingInput(t *testing.T) {
	if err := WriteDot(filepath.Join(t.TempDir(), "nope.gfa"), "x.dot"); err == nil {
		t.Fatal("expected error for missing input")
	}
}
