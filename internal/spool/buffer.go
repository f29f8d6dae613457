// Package spool provides the per-thread output buffers and temp path
// spool files: thread-local accumulation of segment and link records, and
// append-only path/overlap fragment files.
package spool

import (
	"strings"

	"github.com/mudesheng/cdbg/internal/sink"
)

// Buffer accumulates S and L lines for one worker thread and flushes to a
// shared Sink once it crosses Threshold bytes. It is only ever touched by
// its owning goroutine, so no locking is needed.
type Buffer struct {
	ThreadID  int
	Threshold int
	Sink      sink.Sink

	b strings.Builder
}

// NewBuffer constructs a Buffer for threadID that auto-flushes to s once
// its contents reach threshold bytes.
func NewBuffer(threadID, threshold int, s sink.Sink) *Buffer {
	return &Buffer{ThreadID: threadID, Threshold: threshold, Sink: s}
}

// Write appends a formatted record (an S or L line, newline-terminated)
// and flushes if the buffer has crossed its threshold. Flushes preserve
// the order of this thread's records; records of different threads may
// interleave at flush granularity.
func (b *Buffer) Write(record string) error {
	b.b.WriteString(record)
	if b.b.Len() >= b.Threshold {
		return b.Flush()
	}
	return nil
}

// Flush pushes any buffered content to the sink and resets the buffer.
func (b *Buffer) Flush() error {
	if b.b.Len() == 0 {
		return nil
	}
	if err := b.Sink.Write(b.b.String()); err != nil {
		return err
	}
	b.b.Reset()
	return nil
}

// Len reports the number of buffered, unflushed bytes.
func (b *Buffer) Len() int { return b.b.Len() }
