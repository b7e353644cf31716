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

// Package protocol defines the JSON-RPC 2.0 envelope and MCP payload types
// a Session encodes and decodes, independent of whichever Transport carries
// the bytes.
package protocol

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only "jsonrpc" value a conforming peer may send.
const JSONRPCVersion = "2.0"

// Request is an outbound or inbound JSON-RPC call or notification. A nil
// ID marks a notification: the peer must not reply to it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response carries exactly one of Result or Error for the request whose ID
// it echoes.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Reserved JSON-RPC 2.0 error codes; -32000..-32099 are left to the
// application (MCP uses some of that range for its own error kinds).
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
	ServerError    = -32000
)

// NewError builds an Error, marshaling data into the Data field when
// present. A marshal failure is silently absorbed rather than failing the
// call — the error itself is more important than its auxiliary data.
func NewError(code int, message string, data interface{}) *Error {
	e := &Error{Code: code, Message: message}
	if data != nil {
		if encoded, err := json.Marshal(data); err == nil {
			e.Data = encoded
		}
	}
	return e
}

func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("jsonrpc error %d: %s (data: %s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// RequestID is a JSON-RPC id: a string, a number, or absent. At most one
// of Str/Num is set; both nil represents the JSON null id.
type RequestID struct {
	Str *string
	Num *int64
}

// NewStringRequestID builds a string-valued RequestID.
func NewStringRequestID(s string) *RequestID { return &RequestID{Str: &s} }

// NewNumericRequestID builds a number-valued RequestID.
func NewNumericRequestID(n int64) *RequestID { return &RequestID{Num: &n} }

func (r *RequestID) String() string {
	switch {
	case r == nil:
		return "null"
	case r.Str != nil:
		return *r.Str
	case r.Num != nil:
		return fmt.Sprintf("%d", *r.Num)
	default:
		return "null"
	}
}

// MarshalJSON emits the string, the number, or null, matching whichever of
// Str/Num is populated.
func (r *RequestID) MarshalJSON() ([]byte, error) {
	switch {
	case r == nil:
		return []byte("null"), nil
	case r.Str != nil:
		return json.Marshal(r.Str)
	case r.Num != nil:
		return json.Marshal(r.Num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null; null
// leaves both Str and Num nil.
func (r *RequestID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Str = &s
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		r.Num = &n
		return nil
	}

	return fmt.Errorf("request id must be a string, a number, or null, got %s", data)
}
