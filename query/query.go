// Package query translates user-facing search options into ripgrep arguments.
package query

import (
	"strconv"

	"github.com/poiesic/rgsearch/core"
)

// ErrEmptyQuery is returned when there is nothing to search for.
var ErrEmptyQuery = core.ErrEmptyQuery

// Request is everything needed to build one ripgrep invocation.
type Request struct {
	Query   string
	Path    string // Defaults to "." when empty
	Options core.SearchOptions

	// MaxCount limits matches per file (--max-count) when positive.
	MaxCount int
}

// Build returns the ripgrep arguments for r. Output is always JSON lines so
// consumers can decode matches; the streaming core treats them as opaque.
func Build(r Request) ([]string, error) {
	if r.Query == "" {
		return nil, ErrEmptyQuery
	}

	args := []string{"--json"}

	if r.Options.CaseSensitive {
		args = append(args, "--case-sensitive")
	} else {
		args = append(args, "--smart-case")
	}

	if r.Options.WholeWord {
		args = append(args, "--word-regexp")
	}

	if !r.Options.Regex {
		args = append(args, "--fixed-strings")
	}

	for _, g := range r.Options.Globs {
		if g != "" {
			args = append(args, "--glob", g)
		}
	}

	if r.MaxCount > 0 {
		args = append(args, "--max-count", strconv.Itoa(r.MaxCount))
	}

	path := r.Path
	if path == "" {
		path = "."
	}

	// "--" keeps a query starting with a dash from being read as a flag.
	return append(args, "--", r.Query, path), nil
}
