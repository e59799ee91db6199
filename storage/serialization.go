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

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/rgsearch/core"
)

// Encoding version written ahead of every history entry.
const historyEntryVersion = 1

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalHistoryEntry serializes a HistoryEntry to bytes.
// Timestamps are stored as Unix microseconds.
func MarshalHistoryEntry(entry *core.HistoryEntry) []byte {
	ts := entry.Timestamp.UnixMicro()
	opts := entry.Options

	size := varint.Int.Size(historyEntryVersion) +
		varint.Uint64.Size(uint64(entry.Id)) +
		ord.String.Size(entry.Query) +
		ord.String.Size(entry.Path) +
		ord.Bool.Size(opts.CaseSensitive) +
		ord.Bool.Size(opts.WholeWord) +
		ord.Bool.Size(opts.Regex) +
		varint.Int.Size(len(opts.Globs)) +
		varint.Int64.Size(ts)
	for _, g := range opts.Globs {
		size += ord.String.Size(g)
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(historyEntryVersion, buf)
	n += varint.Uint64.Marshal(uint64(entry.Id), buf[n:])
	n += ord.String.Marshal(entry.Query, buf[n:])
	n += ord.String.Marshal(entry.Path, buf[n:])
	n += ord.Bool.Marshal(opts.CaseSensitive, buf[n:])
	n += ord.Bool.Marshal(opts.WholeWord, buf[n:])
	n += ord.Bool.Marshal(opts.Regex, buf[n:])
	n += varint.Int.Marshal(len(opts.Globs), buf[n:])
	for _, g := range opts.Globs {
		n += ord.String.Marshal(g, buf[n:])
	}
	varint.Int64.Marshal(ts, buf[n:])
	return buf
}

// UnmarshalHistoryEntry deserializes a HistoryEntry from bytes.
func UnmarshalHistoryEntry(data []byte) (*core.HistoryEntry, error) {
	d := decoder{data: data}

	version := d.int()
	if d.err == nil && version != historyEntryVersion {
		return nil, fmt.Errorf("%w: unknown history entry version %d", ErrSerializationFailed, version)
	}

	entry := &core.HistoryEntry{}
	entry.Id = core.ID(d.uint64())
	entry.Query = d.string()
	entry.Path = d.string()
	entry.Options.CaseSensitive = d.bool()
	entry.Options.WholeWord = d.bool()
	entry.Options.Regex = d.bool()

	globs := d.int()
	if d.err == nil && (globs < 0 || globs > len(d.data)) {
		return nil, fmt.Errorf("%w: %w: glob count %d", ErrSerializationFailed, ErrTruncatedData, globs)
	}
	for i := 0; i < globs && d.err == nil; i++ {
		entry.Options.Globs = append(entry.Options.Globs, d.string())
	}

	ts := d.int64()
	if d.err != nil {
		return nil, fmt.Errorf("%w: history entry: %w", ErrSerializationFailed, d.err)
	}
	entry.Timestamp = time.UnixMicro(ts).UTC()

	return entry, nil
}

// decoder reads fields in sequence and remembers the first error.
type decoder struct {
	data []byte
	err  error
}

func (d *decoder) advance(n int, err error) bool {
	if err != nil {
		d.err = err
		return false
	}
	d.data = d.data[n:]
	return true
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.data)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.data)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.data)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.data)
	if !d.advance(n, err) {
		return ""
	}
	return v
}

func (d *decoder) bool() bool {
	if d.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(d.data)
	if !d.advance(n, err) {
		return false
	}
	return v
}
