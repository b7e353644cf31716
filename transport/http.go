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
// Package transport implements HTTP/SSE transport for MCP servers.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"
)

// HTTPTransport implements Transport over the classic dual-endpoint
// HTTP+SSE scheme: it opens a long-lived SSE stream to discover the POST
// endpoint the server wants messages sent to (the "endpoint" event), then
// posts outbound envelopes to that endpoint and receives replies as SSE
// "message" events on the same stream.
type HTTPTransport struct {
	endpoint   string
	sseClient  *sse.Client
	httpClient *http.Client

	events chan []byte
	errors chan error

	endpointPath chan string // delivered once, by the first "endpoint" event
	endpointOnce sync.Once
	endpointURL  string
	endpointMu   sync.RWMutex
	endpointWait time.Duration

	mu     sync.Mutex
	closed bool

	logger *zap.Logger
}

// HTTPConfig configures HTTP transport
type HTTPConfig struct {
	Endpoint     string            // HTTP base endpoint
	Headers      map[string]string // Custom headers
	SSEPath      string            // SSE endpoint path (default: /sse)
	Logger       *zap.Logger       // Logger
	EndpointWait time.Duration     // bounded wait for the endpoint event (default 10s)
}

// NewHTTPTransport creates a new HTTP/SSE transport. It begins connecting
// in the background; the first Send blocks (up to EndpointWait) until the
// server's "endpoint" event has been received, per the bounded-wait
// requirement on the client side of the transport contract.
func NewHTTPTransport(config HTTPConfig) (*HTTPTransport, error) {
	if config.SSEPath == "" {
		config.SSEPath = "/sse"
	}
	if config.EndpointWait <= 0 {
		config.EndpointWait = 10 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sseClient := sse.NewClient(config.Endpoint + config.SSEPath)
	for k, v := range config.Headers {
		sseClient.Headers[k] = v
	}

	t := &HTTPTransport{
		endpoint:     config.Endpoint,
		sseClient:    sseClient,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		events:       make(chan []byte, 100),
		errors:       make(chan error, 1),
		endpointPath: make(chan string, 1),
		endpointWait: config.EndpointWait,
		logger:       logger,
	}

	sseClient.OnDisconnect(func(c *sse.Client) {
		t.logger.Warn("SSE disconnected")
		select {
		case t.errors <- fmt.Errorf("SSE disconnected"):
		default:
		}
	})

	go func() {
		ctx := context.Background()
		logger.Debug("attempting SSE subscription", zap.String("endpoint", config.Endpoint+config.SSEPath))

		err := sseClient.SubscribeWithContext(ctx, "", func(msg *sse.Event) {
			switch string(msg.Event) {
			case "endpoint":
				t.endpointOnce.Do(func() {
					t.endpointPath <- string(msg.Data)
				})
			default: // "message" and unlabelled events both carry an envelope
				select {
				case t.events <- msg.Data:
				case <-ctx.Done():
				}
			}
		})
		if err != nil {
			logger.Warn("SSE subscription ended", zap.Error(err))
			select {
			case t.errors <- fmt.Errorf("SSE subscription failed: %w", err):
			default:
			}
		}
	}()

	return t, nil
}

// waitForEndpoint blocks until the endpoint path has been discovered or
// the bounded wait elapses, then resolves it against the base endpoint.
func (h *HTTPTransport) waitForEndpoint(ctx context.Context) (string, error) {
	h.endpointMu.RLock()
	if h.endpointURL != "" {
		defer h.endpointMu.RUnlock()
		return h.endpointURL, nil
	}
	h.endpointMu.RUnlock()

	waitCtx, cancel := context.WithTimeout(ctx, h.endpointWait)
	defer cancel()

	select {
	case path := <-h.endpointPath:
		resolved, err := h.resolveEndpoint(path)
		if err != nil {
			return "", err
		}
		h.endpointMu.Lock()
		h.endpointURL = resolved
		h.endpointMu.Unlock()
		return resolved, nil
	case <-waitCtx.Done():
		return "", fmt.Errorf("timed out waiting for SSE endpoint event: %w", waitCtx.Err())
	}
}

func (h *HTTPTransport) resolveEndpoint(path string) (string, error) {
	base, err := url.Parse(h.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid base endpoint: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint event data %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Send implements Transport (POST request to the discovered endpoint)
func (h *HTTPTransport) Send(ctx context.Context, message []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return fmt.Errorf("transport closed")
	}
	h.mu.Unlock()

	endpoint, err := h.waitForEndpoint(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(message))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error %d: %s", resp.StatusCode, body)
	}

	return nil
}

// Receive implements Transport (SSE event)
func (h *HTTPTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err, ok := <-h.errors:
		if !ok {
			return nil, io.EOF // Channel closed
		}
		return nil, err
	case data, ok := <-h.events:
		if !ok {
			return nil, io.EOF // Channel closed
		}
		return data, nil
	}
}

// Close implements Transport
func (h *HTTPTransport) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	h.logger.Info("closing HTTP/SSE transport")
	h.sseClient.Unsubscribe(nil)

	close(h.events)
	close(h.errors)

	return nil
}
