// Package config defines the CLI configuration (~/.complitracker/cli.yaml).
//
//   - spec.go: CLIConfig and its sections
//   - default.go: built-in defaults
//   - loader.go: file, env and flag merging through confloader
//   - verify.go: Validate
//   - sanitize.go: secret masking for display
package config
