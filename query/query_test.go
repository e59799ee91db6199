package query

import (
	"testing"

	"github.com/poiesic/rgsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "defaults",
			req:  Request{Query: "foo", Path: "/src"},
			want: []string{"--json", "--smart-case", "--fixed-strings", "--", "foo", "/src"},
		},
		{
			name: "case sensitive",
			req:  Request{Query: "Foo", Path: "/src", Options: core.SearchOptions{CaseSensitive: true}},
			want: []string{"--json", "--case-sensitive", "--fixed-strings", "--", "Foo", "/src"},
		},
		{
			name: "whole word regex",
			req:  Request{Query: `fo+`, Path: "/src", Options: core.SearchOptions{WholeWord: true, Regex: true}},
			want: []string{"--json", "--smart-case", "--word-regexp", "--", "fo+", "/src"},
		},
		{
			name: "globs and max count",
			req: Request{
				Query:    "foo",
				Path:     "/src",
				Options:  core.SearchOptions{Globs: []string{"*.go", "", "!vendor/**"}},
				MaxCount: 3,
			},
			want: []string{"--json", "--smart-case", "--fixed-strings", "--glob", "*.go", "--glob", "!vendor/**", "--max-count", "3", "--", "foo", "/src"},
		},
		{
			name: "empty path searches working directory",
			req:  Request{Query: "foo"},
			want: []string{"--json", "--smart-case", "--fixed-strings", "--", "foo", "."},
		},
		{
			name: "dash query",
			req:  Request{Query: "-v", Path: "."},
			want: []string{"--json", "--smart-case", "--fixed-strings", "--", "-v", "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_EmptyQuery(t *testing.T) {
	_, err := Build(Request{Path: "/src"})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
