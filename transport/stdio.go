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
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StdioTransport is the client side of the stdio Transport: it launches a
// child process and exchanges newline-framed JSON-RPC envelopes over its
// stdin/stdout, logging stderr rather than trying to interpret it.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	logger *zap.Logger

	reader   *bufio.Reader
	lines    chan line
	startRdr sync.Once

	mu     sync.Mutex
	closed bool
}

// StdioConfig describes the child process a StdioTransport should launch.
type StdioConfig struct {
	Command string
	Args    []string
	Env     map[string]string
	Dir     string
	Logger  *zap.Logger
}

// NewStdioTransport starts config.Command and returns a Transport wired to
// its pipes. The subprocess is running by the time this returns; Close
// tears it down.
func NewStdioTransport(config StdioConfig) (*StdioTransport, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	// #nosec G204 -- spawns MCP server processes named by trusted config, not user input
	cmd := exec.Command(config.Command, config.Args...)
	if config.Dir != "" {
		cmd.Dir = config.Dir
	}
	cmd.Env = buildChildEnv(config.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdio transport: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdio transport: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("stdio transport: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("stdio transport: start %s: %w", config.Command, err)
	}

	t := &StdioTransport{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: config.Logger,
		reader: bufio.NewReaderSize(stdout, stdioServerReadBuffer),
		lines:  make(chan line, 1),
	}

	go t.drainStderr()

	config.Logger.Info("mcp server started",
		zap.String("command", config.Command),
		zap.Strings("args", config.Args),
		zap.Int("pid", cmd.Process.Pid),
	)

	return t, nil
}

// drainStderr logs the child's stderr lines; MCP servers typically log to
// their own files, so this exists to surface unexpected crash output
// rather than to carry protocol data.
func (t *StdioTransport) drainStderr() {
	r := bufio.NewReader(t.stderr)
	for {
		raw, err := r.ReadBytes('\n')
		if len(raw) > 0 {
			t.logger.Info("mcp server stderr", zap.ByteString("line", raw))
		}
		if err != nil {
			if err != io.EOF {
				t.logger.Error("error reading child stderr", zap.Error(err))
			}
			return
		}
	}
}

func (t *StdioTransport) pump() {
	t.startRdr.Do(func() {
		go func() {
			defer close(t.lines)
			for {
				raw, err := t.reader.ReadBytes('\n')
				t.lines <- line{data: raw, err: err}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Send writes envelope to the child's stdin as a single newline-framed
// line.
func (t *StdioTransport) Send(ctx context.Context, envelope []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("stdio transport: closed")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := t.stdin.Write(envelope); err != nil {
		return fmt.Errorf("stdio transport: write: %w", err)
	}
	if _, err := t.stdin.Write([]byte("\n")); err != nil {
		return fmt.Errorf("stdio transport: write newline: %w", err)
	}
	return nil
}

// Receive returns the next line from the child's stdout, trimmed of its
// terminator. The read pump runs in a single long-lived goroutine, so a
// canceled Receive never leaks one.
func (t *StdioTransport) Receive(ctx context.Context) ([]byte, error) {
	t.pump()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case l, open := <-t.lines:
		if !open {
			return nil, io.EOF
		}
		if l.err != nil {
			return nil, l.err
		}
		data := l.data
		if n := len(data); n > 0 && data[n-1] == '\n' {
			data = data[:n-1]
		}
		if n := len(data); n > 0 && data[n-1] == '\r' {
			data = data[:n-1]
		}
		return data, nil
	}
}

// Close signals the child to exit by closing its stdin, waits up to five
// seconds for a clean exit, and kills it otherwise.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.logger.Info("closing mcp server", zap.Int("pid", t.cmd.Process.Pid))
	t.stdin.Close()

	exited := make(chan error, 1)
	go func() { exited <- t.cmd.Wait() }()

	select {
	case err := <-exited:
		if err != nil {
			t.logger.Warn("mcp server exited with error", zap.Error(err))
		} else {
			t.logger.Info("mcp server exited cleanly")
		}
	case <-time.After(5 * time.Second):
		t.logger.Warn("mcp server did not exit in time, killing")
		if err := t.cmd.Process.Kill(); err != nil {
			t.logger.Error("failed to kill child process", zap.Error(err))
		}
		<-exited
	}

	t.stdout.Close()
	t.stderr.Close()
	return nil
}
