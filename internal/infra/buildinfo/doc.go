// Package buildinfo exposes version metadata stamped into the CLI binary.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/complitracker/complitracker-go/internal/infra/buildinfo.Version=v1.2.0"
package buildinfo
