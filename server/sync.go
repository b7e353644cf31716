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

package server

import (
	"sync"

	"github.com/teradata-labs/mcp-go/protocol"
)

// Sync wraps a Server the same way client.Sync wraps a Client: every
// mutation (AddTool, NotifyResourceUpdated, ...) already blocks until it
// completes, so Sync's only job is to move roots-change consumers off the
// session's dispatch worker pool and onto a dedicated delivery goroutine,
// so a consumer that calls back into the server (RequestRoots from inside
// OnRootsChanged, say) can't starve that pool.
type Sync struct {
	*Server

	mu      sync.Mutex
	events  chan func()
	closed  bool
	closeCh chan struct{}
}

// NewSync wraps an already-constructed Server. eventBuffer bounds how
// many undelivered consumer callbacks Sync will queue before an enqueue
// blocks the notification handler that produced it; 0 selects a default.
func NewSync(srv *Server, eventBuffer int) *Sync {
	if eventBuffer <= 0 {
		eventBuffer = 32
	}
	s := &Sync{
		Server:  srv,
		events:  make(chan func(), eventBuffer),
		closeCh: make(chan struct{}),
	}
	go s.deliver()
	return s
}

func (s *Sync) deliver() {
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.closeCh:
			return
		}
	}
}

func (s *Sync) enqueue(fn func()) {
	select {
	case s.events <- fn:
	case <-s.closeCh:
	}
}

// OnRootsChanged registers consumer to run on Sync's delivery goroutine
// instead of the session's dispatch worker pool.
func (s *Sync) OnRootsChanged(consumer RootsChangeConsumer) {
	s.Server.OnRootsChanged(func(roots []protocol.Root) {
		s.enqueue(func() { consumer(roots) })
	})
}

// Close stops the delivery goroutine, dropping any callbacks still
// queued, then closes the underlying Server.
func (s *Sync) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.closeCh)
	return s.Server.Close()
}
