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

package client

import (
	"sync"

	"github.com/teradata-labs/mcp-go/protocol"
)

// Sync wraps a Client so that change consumers never run on the
// session's dispatch worker pool. Every request-response operation on
// Sync simply delegates to the embedded Client, which already blocks
// until its reply arrives or times out; what Sync adds is a dedicated
// delivery goroutine for consumers registered through it, so a consumer
// that calls back into the client (say, ListTools from inside
// OnToolsChanged) can't starve the worker pool the notification itself
// arrived on.
type Sync struct {
	*Client

	mu      sync.Mutex
	events  chan func()
	closed  bool
	closeCh chan struct{}
}

// NewSync wraps an already-constructed Client. eventBuffer bounds how
// many undelivered consumer callbacks Sync will queue before an enqueue
// blocks the notification handler that produced it; 0 selects a default.
func NewSync(c *Client, eventBuffer int) *Sync {
	if eventBuffer <= 0 {
		eventBuffer = 32
	}
	s := &Sync{
		Client:  c,
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

// enqueue hands fn to the delivery goroutine, or drops it if Sync has
// already been closed.
func (s *Sync) enqueue(fn func()) {
	select {
	case s.events <- fn:
	case <-s.closeCh:
	}
}

// OnToolsChanged registers consumer to run on Sync's delivery goroutine
// instead of the session's dispatch worker pool.
func (s *Sync) OnToolsChanged(consumer ToolsChangeConsumer) {
	s.Client.OnToolsChanged(func(tools []protocol.Tool) {
		s.enqueue(func() { consumer(tools) })
	})
}

// OnResourcesChanged registers consumer to run on Sync's delivery
// goroutine instead of the session's dispatch worker pool.
func (s *Sync) OnResourcesChanged(consumer ResourcesChangeConsumer) {
	s.Client.OnResourcesChanged(func(resources []protocol.Resource) {
		s.enqueue(func() { consumer(resources) })
	})
}

// OnPromptsChanged registers consumer to run on Sync's delivery goroutine
// instead of the session's dispatch worker pool.
func (s *Sync) OnPromptsChanged(consumer PromptsChangeConsumer) {
	s.Client.OnPromptsChanged(func(prompts []protocol.Prompt) {
		s.enqueue(func() { consumer(prompts) })
	})
}

// OnResourceUpdated registers consumer to run on Sync's delivery
// goroutine instead of the session's dispatch worker pool.
func (s *Sync) OnResourceUpdated(uri string, consumer ResourceUpdateConsumer) {
	s.Client.OnResourceUpdated(uri, func(u string) {
		s.enqueue(func() { consumer(u) })
	})
}

// OnLogMessage registers consumer to run on Sync's delivery goroutine
// instead of the session's dispatch worker pool.
func (s *Sync) OnLogMessage(consumer LoggingConsumer) {
	s.Client.OnLogMessage(func(record protocol.LogNotification) {
		s.enqueue(func() { consumer(record) })
	})
}

// Close stops the delivery goroutine, dropping any callbacks still
// queued, then closes the underlying Client.
func (s *Sync) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.closeCh)
	return s.Client.Close()
}
