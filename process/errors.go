// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package process

import "errors"

var (
	// ErrSpawn is returned when the executable cannot be located or launched.
	ErrSpawn = errors.New("failed to spawn process")

	// ErrOutputTaken is returned when the output stream was already handed out.
	ErrOutputTaken = errors.New("output stream already taken")

	// ErrNoOutput is returned when the process has no piped standard output.
	ErrNoOutput = errors.New("process has no piped stdout")
)
