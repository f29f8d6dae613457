package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/cdbg/cdbg"
)

const Kmerdef = 31

var app = cli.New("1.0.0", "Compacted de Bruijn graph unitig extractor", func(c cli.Command) {})

func init() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6090", nil))
	}()
	app.DefineStringFlag("cpuprofile", "", "write cpu profile to file")
	app.DefineIntFlag("K", Kmerdef, "kmer length, must be odd")
	app.DefineStringFlag("p", "unitigs", "prefix of the output file")
	app.DefineIntFlag("t", 1, "number of CPU used")
	extract := app.DefineSubCommand("cdbg", "extract maximal unitigs and write GFA", cdbg.CDBG)
	{
		extract.DefineStringFlag("input", "ref.fa", "input reference FASTA or read FASTQ file")
		extract.DefineIntFlag("BufferThreshold", 1<<20, "output buffer bytes per thread before auto-flush")
		extract.DefineStringFlag("VertexTable", "", "load or save the vertex state table file(*.zst for compressed)")
		extract.DefineBoolFlag("Graph", false, "output dot graph file")
	}
	vstat := app.DefineSubCommand("vstat", "summarize a persisted vertex state table", cdbg.VStat)
	{
		vstat.DefineStringFlag("VertexTable", "vertices.gob", "vertex state table file")
	}
}

func main() {
	app.Start()
}
