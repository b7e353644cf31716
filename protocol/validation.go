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

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateArguments checks arguments against tool's declared JSON Schema.
// A tool with no schema accepts anything.
func ValidateArguments(tool Tool, arguments map[string]interface{}) error {
	if len(tool.InputSchema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(tool.InputSchema),
		gojsonschema.NewGoLoader(arguments),
	)
	if err != nil {
		return fmt.Errorf("validate arguments against %s schema: %w", tool.Name, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		problems[i] = e.String()
	}
	return fmt.Errorf("arguments for %s rejected by schema: %v", tool.Name, problems)
}

// ValidateEnvelope checks the fields a Request must always carry: the
// jsonrpc version tag and a non-empty method name.
func ValidateEnvelope(req *Request) error {
	if req.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("request: jsonrpc version %q, want %q", req.JSONRPC, JSONRPCVersion)
	}
	if req.Method == "" {
		return fmt.Errorf("request: method is required")
	}
	return nil
}

// ValidateReply checks the fields a Response must always carry: the
// jsonrpc version tag, an echoed id, and exactly one of Result/Error.
func ValidateReply(resp *Response) error {
	if resp.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("response: jsonrpc version %q, want %q", resp.JSONRPC, JSONRPCVersion)
	}
	if resp.ID == nil {
		return fmt.Errorf("response: id is required")
	}

	hasResult := len(resp.Result) > 0
	hasError := resp.Error != nil
	if hasResult == hasError {
		return fmt.Errorf("response: exactly one of result or error must be set")
	}
	return nil
}
