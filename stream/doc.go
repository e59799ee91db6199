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

// Package stream turns a process's line output into batched search events.
//
// A Streamer reads lines until the stream ends, a read fails, or the match cap
// is reached. Lines are accumulated and flushed as one data event when either
// the batch size is reached or the flush interval has elapsed since the last
// flush. Whatever remains is flushed when reading stops, and every run ends
// with exactly one finished event, whichever way the loop ended.
//
// Lines are opaque: the streamer never parses them.
package stream
