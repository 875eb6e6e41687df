// Package buildinfo holds version metadata injected at build time.
package buildinfo

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
