// Package buildinfo carries version identification injected at build time:
//
//	go build -ldflags "-X .../internal/buildinfo.Version=v1.2.3 ..."
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
