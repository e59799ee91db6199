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

// Package search runs at most one external search at a time.
//
// The Controller is the entry point. StartSearch evicts and terminates any
// search already in progress, spawns the search executable, installs it in
// the shared slot and hands its output to a stream.Streamer on a pooled
// goroutine. It returns as soon as the new process is installed.
//
// CancelSearch terminates whatever is running and returns without waiting.
// The session's finished event, not the return of CancelSearch, marks the
// end of a search. Events are tagged with the session ID so a consumer can
// discard trailing events from a superseded session.
package search
