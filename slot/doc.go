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

// Package slot provides the single-occupancy registry for the active search.
//
// A Slot holds at most one occupant. Every mutation is a swap under a mutex,
// so concurrent start, cancel and match-cap paths each observe a given
// occupant at most once: whoever swaps it out owns it and is responsible for
// terminating it. The lock is never held while terminating.
package slot
