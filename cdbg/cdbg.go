// Package cdbg is the run orchestration for the compacted de Bruijn graph
// extractor: it wires the vertex table, the sequence source, the per-shard
// walkers, and the stitcher into one run, and exposes the CDBG and VStat
// subcommand entry points.
package cdbg

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/cdbg/internal/gfa"
	"github.com/mudesheng/cdbg/internal/gfawriter"
	"github.com/mudesheng/cdbg/internal/seqsource"
	"github.com/mudesheng/cdbg/internal/sink"
	"github.com/mudesheng/cdbg/internal/spool"
	"github.com/mudesheng/cdbg/internal/stitch"
	"github.com/mudesheng/cdbg/internal/vertex"
	"github.com/mudesheng/cdbg/internal/walker"
	"github.com/mudesheng/cdbg/utils"
)

// Config enumerates everything a run needs, plus the optional
// vertex-table persistence and dot-export paths.
type Config struct {
	K               int
	ThreadCount     int
	BufferThreshold int
	WorkingDir      string
	OutputPath      string
	InputPath       string

	// VertexTablePath, when set, is loaded as the pre-built vertex state
	// table if it exists; otherwise the table built from the input is
	// saved there for later runs. A ".zst" suffix selects zstd
	// compression.
	VertexTablePath string

	// GraphPath, when set, receives a Graphviz dot rendering of the
	// emitted unitig graph after the GFA file is complete.
	GraphPath string
}

// Kind classifies a Run failure.
type Kind int

const (
	InputUnavailable Kind = iota
	OutputUnavailable
	SpoolIOError
	WorkerTermination
	TempCleanupFailure
)

func (k Kind) String() string {
	switch k {
	case InputUnavailable:
		return "InputUnavailable"
	case OutputUnavailable:
		return "OutputUnavailable"
	case SpoolIOError:
		return "SpoolIOError"
	case WorkerTermination:
		return "WorkerTermination"
	case TempCleanupFailure:
		return "TempCleanupFailure"
	default:
		return "Unknown"
	}
}

// RunError carries a Kind plus the sequence index and thread id that
// identify where the failure happened.
type RunError struct {
	Kind     Kind
	SeqIdx   int
	ThreadID int
	Err      error
}

func (e *RunError) Error() string {
	if e.ThreadID >= 0 {
		return fmt.Sprintf("cdbg: %s at sequence %d, thread %d: %v", e.Kind, e.SeqIdx, e.ThreadID, e.Err)
	}
	return fmt.Sprintf("cdbg: %s at sequence %d: %v", e.Kind, e.SeqIdx, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Run executes the whole extraction over cfg.InputPath, writing GFA to
// cfg.OutputPath: classify every canonical k-mer, then walk each sequence
// for maximal unitigs and emit segments, links, and one path record per
// sequence.
func Run(cfg Config) error {
	seqs, err := loadSequences(cfg.InputPath)
	if err != nil {
		return &RunError{Kind: InputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
	}

	table, err := obtainTable(cfg, seqs)
	if err != nil {
		return err
	}

	out, err := sink.Open(cfg.OutputPath)
	if err != nil {
		return &RunError{Kind: OutputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
	}
	if err := out.Write(gfa.Header + "\n"); err != nil {
		out.Close()
		return &RunError{Kind: OutputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
	}

	for seqIdx, s := range seqs {
		seqNo := seqIdx + 1
		if len(s.Bases) < cfg.K {
			continue
		}
		log.Printf("[cdbg.Run] processing sequence %d (%s), length %d\n", seqNo, s.Name, len(s.Bases))
		if err := runSequence(cfg, table, out, seqNo, s.Bases); err != nil {
			out.Close()
			return err
		}
	}

	if err := out.Close(); err != nil {
		return &RunError{Kind: OutputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
	}

	stats := vertex.ComputeStats(table)
	log.Printf("[cdbg.Run] vertex table: %d vertices, %d outputted, %d distinct classes\n",
		stats.Total, stats.Outputted, len(stats.ByClass))

	if cfg.GraphPath != "" {
		if err := gfawriter.WriteDot(cfg.OutputPath, cfg.GraphPath); err != nil {
			return &RunError{Kind: OutputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
		}
	}
	return nil
}

// obtainTable loads a previously persisted vertex state table when
// cfg.VertexTablePath names an existing file, and otherwise builds the
// table from the input sequences, saving it back to VertexTablePath when
// one was requested. Either way the classes are final before any walker
// starts.
func obtainTable(cfg Config, seqs []seqsource.Sequence) (*vertex.Table, error) {
	compress := strings.HasSuffix(cfg.VertexTablePath, ".zst")

	if cfg.VertexTablePath != "" {
		if _, err := os.Stat(cfg.VertexTablePath); err == nil {
			table, err := vertex.Load(cfg.VertexTablePath, compress)
			if err != nil {
				return nil, &RunError{Kind: InputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
			}
			log.Printf("[cdbg.obtainTable] loaded vertex table %q, %d vertices\n", cfg.VertexTablePath, table.Len())
			return table, nil
		}
	}

	bases := make([][]byte, len(seqs))
	for i, s := range seqs {
		bases[i] = s.Bases
	}
	table := vertex.BuildFromSequences(bases, cfg.K)

	if cfg.VertexTablePath != "" {
		if err := vertex.Save(table, cfg.VertexTablePath, compress); err != nil {
			return nil, &RunError{Kind: OutputUnavailable, SeqIdx: -1, ThreadID: -1, Err: err}
		}
	}
	return table, nil
}

func loadSequences(path string) ([]seqsource.Sequence, error) {
	src, err := seqsource.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var seqs []seqsource.Sequence
	for {
		s, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		seqs = append(seqs, s)
	}
	return seqs, nil
}

// shardRanges partitions the valid k-mer start positions of a sequence
// into contiguous per-thread ranges: floor((L-k+1)/T) positions each, the
// last shard absorbing the remainder. A span too small to split falls
// back to a single worker.
func shardRanges(seqLen, k, threadCount int) [][2]int {
	span := seqLen - k + 1
	if threadCount <= 1 || span <= 0 {
		return [][2]int{{0, seqLen - k}}
	}
	taskSize := span / threadCount
	if taskSize == 0 {
		return [][2]int{{0, seqLen - k}}
	}

	ranges := make([][2]int, threadCount)
	for t := 0; t < threadCount; t++ {
		left := t * taskSize
		right := left + taskSize - 1
		if t == threadCount-1 {
			right = seqLen - k
		}
		ranges[t] = [2]int{left, right}
	}
	return ranges
}

type workerResult struct {
	threadID int
	err      error
}

// runSequence shards seq across cfg.ThreadCount workers, joins them, and
// hands their witnesses and spools to the stitcher.
func runSequence(cfg Config, table *vertex.Table, out sink.Sink, seqNo int, seq []byte) error {
	ranges := shardRanges(len(seq), cfg.K, cfg.ThreadCount)
	n := len(ranges)

	buffers := make([]*spool.Buffer, n)
	paths := make([]*spool.Spool, n)
	overlaps := make([]*spool.Spool, n)
	workers := make([]*walker.Worker, n)

	for t := 0; t < n; t++ {
		buffers[t] = spool.NewBuffer(t, cfg.BufferThreshold, out)

		p, err := spool.Open(cfg.WorkingDir, pathPrefix(seqNo), t)
		if err != nil {
			return &RunError{Kind: SpoolIOError, SeqIdx: seqNo, ThreadID: t, Err: err}
		}
		paths[t] = p

		o, err := spool.Open(cfg.WorkingDir, overlapPrefix(seqNo), t)
		if err != nil {
			return &RunError{Kind: SpoolIOError, SeqIdx: seqNo, ThreadID: t, Err: err}
		}
		overlaps[t] = o

		workers[t] = &walker.Worker{
			ThreadID: t,
			Table:    table,
			K:        cfg.K,
			Buf:      buffers[t],
			Path:     paths[t],
			Overlap:  overlaps[t],
		}
	}

	results := make(chan workerResult, n)
	for t := 0; t < n; t++ {
		go func(t int) {
			left, right := ranges[t][0], ranges[t][1]
			results <- workerResult{threadID: t, err: workers[t].Walk(seq, left, right)}
		}(t)
	}

	var firstErr *RunError
	for i := 0; i < n; i++ {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = &RunError{Kind: WorkerTermination, SeqIdx: seqNo, ThreadID: r.threadID, Err: r.err}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	witnesses := make([]walker.Witness, n)
	for t := 0; t < n; t++ {
		witnesses[t] = workers[t].Witness
	}

	// Inter-thread links must land in buffers[t] before those buffers are
	// flushed, and the P-record must follow the flush so the whole
	// sequence's S/L lines precede its P line in the output.
	if err := stitch.ResolveInterThreadLinks(buffers, witnesses, paths, overlaps, cfg.K); err != nil {
		return &RunError{Kind: SpoolIOError, SeqIdx: seqNo, ThreadID: -1, Err: err}
	}

	for t := 0; t < n; t++ {
		if err := buffers[t].Flush(); err != nil {
			return &RunError{Kind: OutputUnavailable, SeqIdx: seqNo, ThreadID: t, Err: err}
		}
	}

	if err := stitch.WritePath(out, seqNo, cfg.K, witnesses, paths, overlaps); err != nil {
		return &RunError{Kind: OutputUnavailable, SeqIdx: seqNo, ThreadID: -1, Err: err}
	}

	for t := 0; t < n; t++ {
		if err := paths[t].Close(); err != nil {
			return &RunError{Kind: SpoolIOError, SeqIdx: seqNo, ThreadID: t, Err: err}
		}
		if err := overlaps[t].Close(); err != nil {
			return &RunError{Kind: SpoolIOError, SeqIdx: seqNo, ThreadID: t, Err: err}
		}
	}

	cleanupSpools(paths, overlaps, seqNo)
	return nil
}

func pathPrefix(seqNo int) string    { return fmt.Sprintf("path.%d", seqNo) }
func overlapPrefix(seqNo int) string { return fmt.Sprintf("overlap.%d", seqNo) }

// cleanupSpools removes the per-sequence spool files; a failure here is
// non-fatal: report and continue.
func cleanupSpools(paths, overlaps []*spool.Spool, seqNo int) {
	for t, p := range paths {
		if err := p.Remove(); err != nil {
			log.Printf("[cdbg.runSequence] TempCleanupFailure: sequence %d thread %d: %v\n", seqNo, t, err)
		}
	}
	for t, o := range overlaps {
		if err := o.Remove(); err != nil {
			log.Printf("[cdbg.runSequence] TempCleanupFailure: sequence %d thread %d: %v\n", seqNo, t, err)
		}
	}
}

// CDBG is the extraction subcommand entry point: pull global/local
// flags, set GOMAXPROCS, and run.
func CDBG(c cli.Command) {
	opt, _ := utils.CheckGlobalArgs(c.Parent())
	runtime.GOMAXPROCS(opt.NumCPU)
	if opt.Kmer%2 != 1 {
		log.Fatalf("[CDBG] -K:%d must be an odd number\n", opt.Kmer)
	}

	if opt.Cpuprofile != "" {
		f, err := os.Create(opt.Cpuprofile)
		if err != nil {
			log.Fatalf("[CDBG] create cpuprofile %q: %v\n", opt.Cpuprofile, err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	workingDir := filepath.Dir(opt.Prefix)
	if workingDir == "" {
		workingDir = "."
	}
	if err := os.MkdirAll(workingDir, 0o755); err != nil {
		log.Fatalf("[CDBG] create working dir %q: %v\n", workingDir, err)
	}

	cfg := Config{
		K:               opt.Kmer,
		ThreadCount:     opt.NumCPU,
		BufferThreshold: utils.MaxInt(c.Flag("BufferThreshold").Get().(int), 1),
		WorkingDir:      workingDir,
		OutputPath:      opt.Prefix + ".gfa",
		InputPath:       c.Flag("input").String(),
		VertexTablePath: c.Flag("VertexTable").String(),
	}
	if c.Flag("Graph").Get().(bool) {
		cfg.GraphPath = opt.Prefix + ".dot"
	}

	if err := Run(cfg); err != nil {
		log.Fatalf("[CDBG] run failed: %v\n", err)
	}
}

// VStat is the read-back diagnostic subcommand: it loads a persisted
// vertex state table and reports per-class and outputted counts without
// re-running extraction.
func VStat(c cli.Command) {
	path := c.Flag("VertexTable").String()
	table, err := vertex.Load(path, strings.HasSuffix(path, ".zst"))
	if err != nil {
		log.Fatalf("[VStat] load %q: %v\n", path, err)
	}
	stats := vertex.ComputeStats(table)
	log.Printf("[VStat] %q: %d vertices, %d outputted\n", path, stats.Total, stats.Outputted)
	for class, count := range stats.ByClass {
		log.Printf("[VStat] class(left=%d,right=%d): %d\n", class.Left(), class.Right(), count)
	}
}
