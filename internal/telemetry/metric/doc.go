// Package metric holds the CLI's Prometheus instruments: session state
// transitions and remote call counts and latencies. Shell mode can serve
// them on /metrics through Server.
package metric
