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
	"os"
	"runtime"
	"strings"
)

// unixInheritedEnv is the safe environment-variable inheritance set for
// stdio child processes on Unix-like systems.
var unixInheritedEnv = []string{"HOME", "LOGNAME", "PATH", "SHELL", "TERM", "USER"}

// windowsInheritedEnv is the safe environment-variable inheritance set for
// stdio child processes on Windows.
var windowsInheritedEnv = []string{
	"APPDATA", "HOMEDRIVE", "HOMEPATH", "LOCALAPPDATA", "PATH",
	"PROCESSOR_ARCHITECTURE", "SYSTEMDRIVE", "SYSTEMROOT", "TEMP",
	"USERNAME", "USERPROFILE",
}

// defaultInheritedEnv returns the safe-list for the running platform.
func defaultInheritedEnv() []string {
	if runtime.GOOS == "windows" {
		return windowsInheritedEnv
	}
	return unixInheritedEnv
}

// buildChildEnv assembles the environment for a spawned stdio child: the
// platform's safe inheritance set drawn from the current process's
// environment, plus any explicit additions from extra. Values that begin
// with "()" are dropped — a guard against shell function-export leakage
// (the Shellshock class of vulnerability) riding in through an inherited
// variable.
func buildChildEnv(extra map[string]string) []string {
	inherited := make(map[string]string)
	for _, name := range defaultInheritedEnv() {
		if v, ok := os.LookupEnv(name); ok {
			inherited[name] = v
		}
	}
	for k, v := range extra {
		inherited[k] = v
	}

	env := make([]string, 0, len(inherited))
	for k, v := range inherited {
		if strings.HasPrefix(v, "()") {
			continue
		}
		env = append(env, k+"="+v)
	}
	return env
}
