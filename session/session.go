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

// Package session implements the transport-agnostic JSON-RPC peer shared
// by the client and server roles: it assigns request ids, correlates
// responses to outstanding requests under a per-request timeout, routes
// inbound requests and notifications to registered handlers, and
// serializes outbound writes onto a single Transport.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/teradata-labs/mcp-go/protocol"
	"github.com/teradata-labs/mcp-go/transport"
	"go.uber.org/zap"
)

// DefaultRequestTimeout is applied to every outbound request whose caller
// does not override it at construction time.
const DefaultRequestTimeout = 10 * time.Second

// DefaultMaxConcurrentHandlers bounds the worker pool that runs request
// and notification handlers, keeping blocking user code off the
// transport's read path.
const DefaultMaxConcurrentHandlers = 64

// RequestHandler produces a result payload (marshaled as the response's
// "result") or an error (converted to a JSON-RPC error response).
type RequestHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// NotificationHandler processes a one-way notification. Its error, if
// any, is logged and never surfaced to the peer.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

type state int32

const (
	stateCreated state = iota
	stateRunning
	stateClosing
	stateClosed
)

// envelope is the superset shape used to discriminate an inbound JSON-RPC
// message into request, response, or notification per §3 of the wire
// format: presence of id and method/result/error.
type envelope struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      *protocol.RequestID `json:"id,omitempty"`
	Method  string              `json:"method,omitempty"`
	Params  json.RawMessage     `json:"params,omitempty"`
	Result  json.RawMessage     `json:"result,omitempty"`
	Error   *protocol.Error     `json:"error,omitempty"`
}

type pendingRequest struct {
	method string
	respCh chan *protocol.Response
}

// Session is a transport-agnostic JSON-RPC 2.0 peer.
type Session struct {
	transport transport.Transport
	logger    *zap.Logger

	prefix  string
	counter int64

	requestTimeout time.Duration
	workerSem      chan struct{}

	mu      sync.Mutex
	state   state
	pending map[string]*pendingRequest

	handlersMu           sync.RWMutex
	requestHandlers      map[string]RequestHandler
	notificationHandlers map[string]NotificationHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config configures a Session.
type Config struct {
	Transport             transport.Transport
	Logger                *zap.Logger
	RequestTimeout        time.Duration // default 10s
	MaxConcurrentHandlers int           // default 64
}

// New constructs a Session in the CREATED state. Handlers must be
// registered via RegisterRequestHandler/RegisterNotificationHandler
// before Start is called — no inbound message may be observed before the
// routing tables are populated.
func New(config Config) *Session {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	maxHandlers := config.MaxConcurrentHandlers
	if maxHandlers <= 0 {
		maxHandlers = DefaultMaxConcurrentHandlers
	}

	return &Session{
		transport:            config.Transport,
		logger:               logger,
		prefix:               uuid.NewString(),
		requestTimeout:       timeout,
		workerSem:            make(chan struct{}, maxHandlers),
		pending:              make(map[string]*pendingRequest),
		requestHandlers:      make(map[string]RequestHandler),
		notificationHandlers: make(map[string]NotificationHandler),
		state:                stateCreated,
	}
}

// RegisterRequestHandler installs the handler for an inbound method.
func (s *Session) RegisterRequestHandler(method string, handler RequestHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.requestHandlers[method] = handler
}

// RegisterNotificationHandler installs the handler for an inbound
// one-way notification method.
func (s *Session) RegisterNotificationHandler(method string, handler NotificationHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.notificationHandlers[method] = handler
}

// Start transitions the session to RUNNING and begins the inbound read
// loop. The dispatcher is installed before any message can be observed,
// since the read loop itself performs the routing-table lookups.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateCreated {
		s.mu.Unlock()
		return &protocol.StateError{Reason: "session already started"}
	}
	s.state = stateRunning
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.readLoop()

	return nil
}

func (s *Session) getState() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) readLoop() {
	defer s.wg.Done()

	for {
		raw, err := s.transport.Receive(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil || err == io.EOF {
				s.logger.Debug("session read loop stopping", zap.Error(err))
			} else {
				s.logger.Warn("transport read error, terminating session", zap.Error(err))
			}
			s.terminate()
			return
		}
		s.dispatch(raw)
	}
}

func (s *Session) dispatch(raw []byte) {
	if s.getState() != stateRunning {
		s.logger.Warn("dropping message: session not running")
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.logger.Warn("dropping malformed envelope", zap.Error(err))
		return
	}

	switch {
	case env.Method == "":
		s.handleIncomingResponse(&env)
	case env.ID == nil:
		s.dispatchNotification(env.Method, env.Params)
	default:
		s.dispatchRequest(env.ID, env.Method, env.Params)
	}
}

func (s *Session) handleIncomingResponse(env *envelope) {
	if env.ID == nil {
		s.logger.Warn("dropping response with no id")
		return
	}
	id := env.ID.String()

	s.mu.Lock()
	pr, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if !ok {
		// Chosen behavior for an unmatched response id: log and drop.
		s.logger.Warn("dropping response for unknown request id", zap.String("id", id))
		return
	}

	resp := &protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: env.ID, Result: env.Result, Error: env.Error}
	pr.respCh <- resp
}

func (s *Session) dispatchNotification(method string, params json.RawMessage) {
	s.handlersMu.RLock()
	handler, ok := s.notificationHandlers[method]
	s.handlersMu.RUnlock()

	if !ok {
		s.logger.Debug("dropping notification: no handler", zap.String("method", method))
		return
	}

	s.runHandler(func() {
		if err := handler(s.ctx, params); err != nil {
			s.logger.Warn("notification handler failed", zap.String("method", method), zap.Error(err))
		}
	})
}

func (s *Session) dispatchRequest(id *protocol.RequestID, method string, params json.RawMessage) {
	s.handlersMu.RLock()
	handler, ok := s.requestHandlers[method]
	s.handlersMu.RUnlock()

	if !ok {
		s.runHandler(func() {
			s.writeResponse(id, nil, protocol.NewError(protocol.MethodNotFound, fmt.Sprintf("Method not found: %s", method), nil))
		})
		return
	}

	s.runHandler(func() {
		result, err := handler(s.ctx, params)
		if err != nil {
			var rpcErr *protocol.Error
			if asRPCErr(err, &rpcErr) {
				s.writeResponse(id, nil, rpcErr)
				return
			}
			s.writeResponse(id, nil, protocol.NewError(protocol.InternalError, err.Error(), nil))
			return
		}
		s.writeResponse(id, result, nil)
	})
}

// asRPCErr reports whether err is (or wraps) a *protocol.Error, à la
// errors.As, without importing "errors" twice for a single call site.
func asRPCErr(err error, target **protocol.Error) bool {
	for err != nil {
		if rpcErr, ok := err.(*protocol.Error); ok {
			*target = rpcErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func (s *Session) writeResponse(id *protocol.RequestID, result interface{}, rpcErr *protocol.Error) {
	resp := protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: id}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			resp.Error = protocol.NewError(protocol.InternalError, fmt.Sprintf("marshal result: %v", err), nil)
		} else {
			resp.Result = data
		}
	} else {
		resp.Result = json.RawMessage("{}")
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal response envelope", zap.Error(err))
		return
	}

	// Best-effort: the transport may already be closed if the session shut
	// down while this handler was in flight.
	if err := s.transport.Send(s.ctx, raw); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// runHandler executes fn on the bounded worker pool without blocking the
// caller (the read loop).
func (s *Session) runHandler(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case s.workerSem <- struct{}{}:
			defer func() { <-s.workerSem }()
		case <-s.ctx.Done():
			return
		}
		fn()
	}()
}

// SendRequest sends a request and blocks until a matching response
// arrives, the per-request timeout expires, the context is cancelled, or
// the session closes. On success, result (if non-nil) is populated by
// unmarshaling the response's result payload.
func (s *Session) SendRequest(ctx context.Context, method string, params interface{}, result interface{}) error {
	if s.getState() != stateRunning {
		return &protocol.StateError{Reason: "session not running"}
	}

	id := fmt.Sprintf("%s-%d", s.prefix, atomic.AddInt64(&s.counter, 1))

	var paramsJSON json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		paramsJSON = data
	}

	req := protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      protocol.NewStringRequestID(id),
		Method:  method,
		Params:  paramsJSON,
	}

	pr := &pendingRequest{method: method, respCh: make(chan *protocol.Response, 1)}
	s.mu.Lock()
	s.pending[id] = pr
	s.mu.Unlock()

	raw, err := json.Marshal(req)
	if err != nil {
		s.removePending(id)
		return fmt.Errorf("marshal request: %w", err)
	}

	if err := s.transport.Send(ctx, raw); err != nil {
		s.removePending(id)
		return &protocol.TransportError{Op: "send request", Err: err}
	}

	timer := time.NewTimer(s.requestTimeout)
	defer timer.Stop()

	select {
	case resp := <-pr.respCh:
		if resp.ID == nil {
			// terminate completes pending requests with an id-less response.
			return &protocol.SessionClosedError{}
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	case <-timer.C:
		if s.removePending(id) {
			return &protocol.TimeoutError{Method: method, ID: id}
		}
		// A response raced the timer and already claimed the entry.
		resp := <-pr.respCh
		if resp.ID == nil {
			return &protocol.SessionClosedError{}
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			_ = json.Unmarshal(resp.Result, result)
		}
		return nil
	case <-ctx.Done():
		s.removePending(id)
		return ctx.Err()
	case <-s.ctx.Done():
		s.removePending(id)
		return &protocol.SessionClosedError{}
	}
}

// removePending deletes the pending entry for id if it is still present,
// reporting whether this call was the one that removed it.
func (s *Session) removePending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; ok {
		delete(s.pending, id)
		return true
	}
	return false
}

// SendNotification writes a one-way notification; there is no response
// to correlate.
func (s *Session) SendNotification(ctx context.Context, method string, params interface{}) error {
	if s.getState() != stateRunning {
		return &protocol.StateError{Reason: "session not running"}
	}

	var paramsJSON json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		paramsJSON = data
	}

	note := protocol.Request{JSONRPC: protocol.JSONRPCVersion, Method: method, Params: paramsJSON}
	raw, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := s.transport.Send(ctx, raw); err != nil {
		return &protocol.TransportError{Op: "send notification", Err: err}
	}
	return nil
}

// CloseGracefully stops accepting new outbound sends, lets in-flight
// handlers complete, completes every pending request with a
// session-closed error, and releases the transport.
func (s *Session) CloseGracefully(ctx context.Context) error {
	return s.close(ctx, false)
}

// Close forces an immediate shutdown: the inbound loop and any in-flight
// handler awaits are cancelled without waiting for completion.
func (s *Session) Close() error {
	return s.close(context.Background(), true)
}

func (s *Session) close(ctx context.Context, forced bool) error {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = stateClosing
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if !forced {
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}

	s.terminate()
	return nil
}

// terminate finalizes the CLOSED state and fails every still-pending
// request with a session-closed error. Safe to call more than once.
func (s *Session) terminate() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	pending := s.pending
	s.pending = make(map[string]*pendingRequest)
	s.mu.Unlock()

	for _, pr := range pending {
		pr.respCh <- &protocol.Response{JSONRPC: protocol.JSONRPCVersion, Error: protocol.NewError(protocol.InternalError, (&protocol.SessionClosedError{}).Error(), nil)}
	}

	if err := s.transport.Close(); err != nil {
		s.logger.Debug("error closing transport", zap.Error(err))
	}
}

// IsRunning reports whether the session is currently accepting sends.
func (s *Session) IsRunning() bool {
	return s.getState() == stateRunning
}
