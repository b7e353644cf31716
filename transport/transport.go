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
// Package transport carries framed JSON-RPC envelopes between a session and
// its peer, independent of whatever runs on the other end: a subprocess on
// stdio, or an HTTP+SSE endpoint.
package transport

import (
	"context"
	"io"
)

// Transport moves opaque, newline-free JSON-RPC envelopes to and from a
// peer. A session never inspects the byte payload Send/Receive exchange; it
// only decides, from the decoded envelope, what to do with it.
//
// Receive must block until a message arrives, ctx is canceled, or the
// transport is closed; a closed transport with no further input returns
// io.EOF. Close must unblock any in-flight Receive.
type Transport interface {
	Send(ctx context.Context, envelope []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// duplexStream is satisfied by os.Stdin/os.Stdout style byte-stream pairs
// that a Transport wraps directly rather than dialing out to.
type duplexStream interface {
	io.Reader
	io.Writer
	io.Closer
}
