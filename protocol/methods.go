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

// Method names for every request and notification defined by the protocol.
const (
	MethodInitialize             = "initialize"
	MethodNotificationInitialized = "notifications/initialized"
	MethodPing                   = "ping"

	MethodToolsList              = "tools/list"
	MethodToolsCall               = "tools/call"
	MethodNotificationToolsListChanged = "notifications/tools/list_changed"

	MethodResourcesList          = "resources/list"
	MethodResourcesRead          = "resources/read"
	MethodResourceTemplatesList  = "resources/templates/list"
	MethodResourcesSubscribe     = "resources/subscribe"
	MethodResourcesUnsubscribe   = "resources/unsubscribe"
	MethodNotificationResourcesListChanged = "notifications/resources/list_changed"
	MethodNotificationResourcesUpdated     = "notifications/resources/updated"

	MethodPromptsList            = "prompts/list"
	MethodPromptsGet              = "prompts/get"
	MethodNotificationPromptsListChanged = "notifications/prompts/list_changed"

	MethodLoggingSetLevel        = "logging/setLevel"
	MethodNotificationMessage    = "notifications/message"

	MethodRootsList               = "roots/list"
	MethodNotificationRootsListChanged = "notifications/roots/list_changed"

	MethodSamplingCreateMessage  = "sampling/createMessage"
)

// LoggingLevel is one of the eight RFC-5424-derived severities the
// logging capability area uses to gate notifications/message emission.
type LoggingLevel int

const (
	LogDebug LoggingLevel = iota
	LogInfo
	LogNotice
	LogWarning
	LogError
	LogCritical
	LogAlert
	LogEmergency
)

var loggingLevelNames = map[LoggingLevel]string{
	LogDebug:     "debug",
	LogInfo:      "info",
	LogNotice:    "notice",
	LogWarning:   "warning",
	LogError:     "error",
	LogCritical:  "critical",
	LogAlert:     "alert",
	LogEmergency: "emergency",
}

var loggingLevelValues = map[string]LoggingLevel{
	"debug":     LogDebug,
	"info":      LogInfo,
	"notice":    LogNotice,
	"warning":   LogWarning,
	"error":     LogError,
	"critical":  LogCritical,
	"alert":     LogAlert,
	"emergency": LogEmergency,
}

// String returns the wire representation of the level.
func (l LoggingLevel) String() string {
	if s, ok := loggingLevelNames[l]; ok {
		return s
	}
	return "info"
}

// ParseLoggingLevel converts the wire representation of a level back into
// a LoggingLevel. Unknown strings are treated as "info".
func ParseLoggingLevel(s string) LoggingLevel {
	if l, ok := loggingLevelValues[s]; ok {
		return l
	}
	return LogInfo
}

// MarshalJSON implements json.Marshaler, emitting the level's string name.
func (l LoggingLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting the level's string name.
func (l *LoggingLevel) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*l = ParseLoggingLevel(s)
	return nil
}
