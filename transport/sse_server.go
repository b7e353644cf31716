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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEServer implements the server side of the classic dual-endpoint
// HTTP+SSE transport: one long-lived GET /sse stream per connected
// client, on which the server first publishes a single "endpoint" event
// (the per-session POST path the client must use) and thereafter
// publishes "message" events; the client's own envelopes arrive as
// POSTs to that path. The server maintains a session-per-connected-client
// table keyed by the uuid path parameter embedded in the endpoint URL.
type SSEServer struct {
	ssePath     string
	messagePath string
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sseSession
	accept   chan *sseSession
	closed   bool
}

// SSEServerConfig configures an SSEServer.
type SSEServerConfig struct {
	SSEPath     string // default "/sse"
	MessagePath string // default "/messages"
	Logger      *zap.Logger
}

// NewSSEServer creates a new classic HTTP+SSE server-side transport
// multiplexer. Each accepted client connection is obtained via Accept and
// implements Transport, suitable for running one Session per client.
func NewSSEServer(config SSEServerConfig) *SSEServer {
	if config.SSEPath == "" {
		config.SSEPath = "/sse"
	}
	if config.MessagePath == "" {
		config.MessagePath = "/messages"
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SSEServer{
		ssePath:     config.SSEPath,
		messagePath: config.MessagePath,
		logger:      logger,
		sessions:    make(map[string]*sseSession),
		accept:      make(chan *sseSession, 16),
	}
}

// Accept blocks until a new client has connected its SSE stream, or ctx
// is cancelled, or the server is closed.
func (s *SSEServer) Accept(ctx context.Context) (*sseSession, error) {
	select {
	case sess, ok := <-s.accept:
		if !ok {
			return nil, io.EOF
		}
		return sess, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ServeHTTP dispatches GET requests to the SSE stream handler and POST
// requests to the inbound-message handler.
func (s *SSEServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == s.ssePath:
		s.handleSSE(w, r)
	case r.Method == http.MethodPost && len(r.URL.Path) > len(s.messagePath) && r.URL.Path[:len(s.messagePath)] == s.messagePath:
		s.handleMessage(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	sess := newSSESession(id)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		http.Error(w, "server closed", http.StatusServiceUnavailable)
		return
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.Close()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	endpointURL := fmt.Sprintf("%s/%s", s.messagePath, id)
	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", endpointURL)
	flusher.Flush()

	select {
	case s.accept <- sess:
	case <-r.Context().Done():
		return
	}

	s.logger.Info("SSE client connected", zap.String("session", id))

	for {
		select {
		case msg, ok := <-sess.outbound:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", zap.String("session", id))
			return
		}
	}
}

func (s *SSEServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len(s.messagePath)+1:]

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10*1024*1024))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := sess.deliver(r.Context(), body); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Close stops accepting new connections and closes every active session.
func (s *SSEServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.accept)
	for _, sess := range s.sessions {
		sess.Close()
	}
	return nil
}

// sseSession implements Transport for one connected SSE client.
type sseSession struct {
	id       string
	outbound chan []byte
	inbound  chan []byte

	mu     sync.Mutex
	closed bool
}

func newSSESession(id string) *sseSession {
	return &sseSession{
		id:       id,
		outbound: make(chan []byte, 64),
		inbound:  make(chan []byte, 64),
	}
}

// ID returns the session's path-parameter identifier.
func (s *sseSession) ID() string { return s.id }

func (s *sseSession) deliver(ctx context.Context, msg []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session closed")
	}
	s.mu.Unlock()

	select {
	case s.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("enqueue failed: inbound queue full")
	}
}

// Send implements Transport: publishes an SSE "message" event to the
// client's stream.
func (s *sseSession) Send(ctx context.Context, message []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session closed")
	}
	s.mu.Unlock()

	select {
	case s.outbound <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("enqueue failed: outbound queue full")
	}
}

// Receive implements Transport: waits for the next POSTed envelope.
func (s *sseSession) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-s.inbound:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements Transport.
func (s *sseSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.outbound)
	close(s.inbound)
	return nil
}
