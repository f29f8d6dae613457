// Package sink provides the shared append-only GFA output writer: batched
// async writes with explicit flush and shutdown, preserving byte order of
// each submitted record.
package sink

import (
	"bufio"
	"fmt"
	"os"
)

// Sink is the contract every output destination (the real GFA file, or a
// test's in-memory recorder) must satisfy.
type Sink interface {
	Write(s string) error
	Flush() error
	Close() error
}

// FileSink serializes all writes through a single background goroutine
// onto a buffered file writer, so concurrent flushes from many worker
// goroutines never interleave mid-record.
type FileSink struct {
	f  *os.File
	bw *bufio.Writer

	writes  chan writeReq
	flushes chan chan error
	done    chan struct{}
}

type writeReq struct {
	s    string
	errc chan error
}

// Open truncates path, writes it fresh, and starts the background writer
// goroutine.
func Open(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: open output %q: %w", path, err)
	}

	s := &FileSink{
		f:       f,
		bw:      bufio.NewWriter(f),
		writes:  make(chan writeReq, 64),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *FileSink) run() {
	defer close(s.done)
	for {
		select {
		case req, ok := <-s.writes:
			if !ok {
				return
			}
			_, err := s.bw.WriteString(req.s)
			req.errc <- err
		case errc := <-s.flushes:
			errc <- s.bw.Flush()
		}
	}
}

// Write enqueues s for the background writer and waits for it to land,
// which is enough to guarantee ordering against subsequent calls from the
// same or other goroutines without holding a lock in the caller.
func (s *FileSink) Write(str string) error {
	errc := make(chan error, 1)
	s.writes <- writeReq{s: str, errc: errc}
	return <-errc
}

// Flush posts a flush request and waits for it.
func (s *FileSink) Flush() error {
	errc := make(chan error, 1)
	s.flushes <- errc
	return <-errc
}

// Close flushes, stops the background goroutine, and closes the file.
func (s *FileSink) Close() error {
	if err := s.Flush(); err != nil {
		s.f.Close()
		return err
	}
	close(s.writes)
	<-s.done
	return s.f.Close()
}
