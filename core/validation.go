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

package core

import (
	"fmt"
	"time"
)

// ValidateHistoryEntry validates a HistoryEntry according to domain rules.
//
// Validation rules:
//   - Query must not be empty
//   - Timestamp must not be in the future
//
// NOT validated:
//   - Path (empty means the working directory)
//   - ID (derived from the tuple on insert)
func ValidateHistoryEntry(entry *HistoryEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidHistoryEntry)
	}

	if entry.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryEntry, ErrEmptyQuery)
	}

	if !IsValidTimestamp(entry.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryEntry, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEvent checks the shape of a SearchEvent.
func ValidateEvent(event SearchEvent) error {
	switch event.Kind {
	case EventData:
		return nil
	case EventFinished:
		if len(event.Lines) != 0 {
			return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrFinishedWithLines)
		}
		return nil
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidEvent, ErrUnknownEventKind, event.Kind)
	}
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
