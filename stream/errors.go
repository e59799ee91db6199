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

package stream

import "errors"

var (
	// ErrSinkRequired is returned when a Streamer is built without a sink.
	ErrSinkRequired = errors.New("event sink required")

	// ErrInvalidConfig is returned when a Config has non-positive thresholds.
	ErrInvalidConfig = errors.New("invalid stream config")

	// ErrInvalidLine is reported when the stream yields a line that is not valid UTF-8.
	// It ends the read loop like any other read failure.
	ErrInvalidLine = errors.New("line is not valid UTF-8")

	// ErrSinkClosed is returned by sinks that no longer accept events.
	ErrSinkClosed = errors.New("sink closed")
)
