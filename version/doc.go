// Package version reports the build identity of carmarket binaries.
//
// Version and build time are set at link time; the commit and dirty flag
// fall back to the VCS stamp the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/carmarket/version.Version=1.4.0" ./cmd/carmarket-api
package version
