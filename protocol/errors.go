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

package protocol

import "fmt"

// TransportError reports a failure in the channel underneath a Session:
// the outbound queue refused a write, the peer stream ended, a process
// failed to start, or an SSE endpoint was never discovered.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s", e.Op)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports a request that was not answered within the
// session's per-request deadline.
type TimeoutError struct {
	Method string
	ID     string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s (id %s) timed out waiting for a response", e.Method, e.ID)
}

// StateError reports an operation attempted before initialization, gated
// by a capability the peer never advertised, attempted twice when only
// once is allowed, or attempted after the session closed.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return "state error: " + e.Reason }

// NewCapabilityError builds a StateError for a missing capability gate.
func NewCapabilityError(who, capability string) *StateError {
	return &StateError{Reason: fmt.Sprintf("%s did not advertise the %q capability", who, capability)}
}

// RegistryError reports a duplicate or missing tool/resource/prompt/root.
type RegistryError struct {
	Kind string // "tool", "resource", "prompt", "root"
	Key  string
	Dup  bool
}

func (e *RegistryError) Error() string {
	if e.Dup {
		return fmt.Sprintf("%s %q already registered", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// VersionError reports that a peer chose a protocol version outside the
// caller's supported set.
type VersionError struct {
	Offered  string
	Selected string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("protocol version %q is not among the supported versions %v", e.Selected, e.Offered)
}

// SessionClosedError is returned to every caller whose pending request is
// cancelled by Session.Close or Session.CloseGracefully.
type SessionClosedError struct{}

func (e *SessionClosedError) Error() string { return "session closed" }
