// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// line is one newline-delimited read from the peer's stdout, paired with
// whatever error terminated it.
type line struct {
	data []byte
	err  error
}

const stdioServerReadBuffer = 1 << 20 // 1MB, generous for large tool results

// StdioServer is the server side of the stdio Transport: it reads
// newline-framed JSON-RPC requests from a child process's stdin (or
// whatever reader it's handed) and writes responses to its stdout.
//
// A single background goroutine owns the reader for the transport's
// lifetime. Receive never spawns or joins goroutines itself — it just
// selects between that goroutine's output channel and ctx.Done — so a
// canceled Receive never leaks the underlying blocking read.
type StdioServer struct {
	in  *bufio.Reader
	out io.Writer

	mu     sync.Mutex
	closed bool

	lines    chan line
	startRdr sync.Once
}

// NewStdioServerTransport wraps r/w (typically os.Stdin/os.Stdout when the
// process itself is the MCP server) as a server-side stdio Transport.
func NewStdioServerTransport(r io.Reader, w io.Writer) *StdioServer {
	return &StdioServer{
		in:    bufio.NewReaderSize(r, stdioServerReadBuffer),
		out:   w,
		lines: make(chan line, 1),
	}
}

// pump reads lines until the underlying reader errors (EOF included) and
// forwards each to s.lines, then closes it. Started at most once.
func (s *StdioServer) pump() {
	s.startRdr.Do(func() {
		go func() {
			defer close(s.lines)
			for {
				raw, err := s.in.ReadBytes('\n')
				s.lines <- line{data: raw, err: err}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Send writes envelope as a single line. Concurrent calls to Send are
// serialized; interleaving with Receive is not an issue since they use
// disjoint streams.
func (s *StdioServer) Send(_ context.Context, envelope []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stdio server transport: closed")
	}

	framed := make([]byte, 0, len(envelope)+1)
	framed = append(framed, envelope...)
	framed = append(framed, '\n')
	if _, err := s.out.Write(framed); err != nil {
		return fmt.Errorf("stdio server transport: write: %w", err)
	}
	return nil
}

// Receive returns the next complete, non-empty line, trimmed of its
// terminator. It blocks until one arrives, ctx is done, or the stream is
// exhausted.
func (s *StdioServer) Receive(ctx context.Context) ([]byte, error) {
	s.pump()

	for {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return nil, fmt.Errorf("stdio server transport: closed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case l, open := <-s.lines:
			if !open {
				return nil, io.EOF
			}
			if l.err != nil {
				if l.err == io.EOF {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("stdio server transport: read: %w", l.err)
			}
			trimmed := bytes.TrimRight(l.data, "\r\n")
			if len(trimmed) == 0 {
				continue // blank line between frames, not a message
			}
			return trimmed, nil
		}
	}
}

// Close marks the transport unusable for further Send and Receive calls.
// A Receive already blocked when Close is called is not unblocked by it;
// it returns once the next line arrives, the reader ends, or its ctx is
// done. The underlying reader/writer are left open since they are usually
// os.Stdin/os.Stdout, owned by the process rather than the transport; the
// pump goroutine exits on its own once the reader returns EOF or an error.
func (s *StdioServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
