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

package search

import "errors"

var (
	// ErrSlotRequired is returned when a controller is built without a slot.
	ErrSlotRequired = errors.New("search slot required")

	// ErrSinkRequired is returned when a controller is built without an event sink.
	ErrSinkRequired = errors.New("event sink required")

	// ErrExecutableRequired is returned when the executable name is empty.
	ErrExecutableRequired = errors.New("search executable required")

	// ErrControllerReleased is returned by StartSearch after Release.
	ErrControllerReleased = errors.New("search controller released")
)
