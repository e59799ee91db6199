// Package report interprets the lines a search streams back.
//
// The streaming core treats output lines as opaque. This package decodes
// ripgrep's --json messages into matches, keeps a running Summary of a
// session, and reports streaming progress to a terminal.
package report
