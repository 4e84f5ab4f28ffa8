// Package buildinfo provides build information for cricket-cli.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/cricket-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Without ldflags the commit and Go version are read from the module
// build info embedded by the Go toolchain.
package buildinfo
