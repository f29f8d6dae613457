// Package gfawriter renders an emitted GFA file as a Graphviz dot graph
// for visual inspection: segments become record nodes, links become
// directed edges.
package gfawriter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/awalterschulze/gographviz"
)

// WriteDot reads the S and L records of the GFA file at gfaPath and writes
// a dot rendering to dotPath. P and H records are skipped: the path is a
// per-sequence trace, not graph topology.
func WriteDot(gfaPath, dotPath string) error {
	in, err := os.Open(gfaPath)
	if err != nil {
		return fmt.Errorf("gfawriter: open %q: %w", gfaPath, err)
	}
	defer in.Close()

	g := gographviz.NewGraph()
	g.SetName("G")
	g.SetDir(true)
	g.SetStrict(false)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 1<<20), 1<<26)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				return fmt.Errorf("gfawriter: short S record %q", sc.Text())
			}
			attr := make(map[string]string)
			attr["color"] = "Green"
			attr["shape"] = "record"
			attr["label"] = "\"ID:" + fields[1] + " len:" + fmt.Sprint(len(fields[2])) + "\""
			if err := g.AddNode("G", fields[1], attr); err != nil {
				return fmt.Errorf("gfawriter: add node: %w", err)
			}
		case "L":
			if len(fields) < 6 {
				return fmt.Errorf("gfawriter: short L record %q", sc.Text())
			}
			attr := make(map[string]string)
			attr["color"] = "Blue"
			attr["label"] = "\"" + fields[2] + fields[4] + " " + fields[5] + "\""
			if err := g.AddEdge(fields[1], fields[3], true, attr); err != nil {
				return fmt.Errorf("gfawriter: add edge: %w", err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("gfawriter: scan %q: %w", gfaPath, err)
	}

	gfp, err := os.Create(dotPath)
	if err != nil {
		return fmt.Errorf("gfawriter: create %q: %w", dotPath, err)
	}
	defer gfp.Close()
	if _, err := gfp.WriteString(g.String()); err != nil {
		return fmt.Errorf("gfawriter: write %q: %w", dotPath, err)
	}
	return nil
}
