// Package output renders command results for the terminal.
//
//   - formatter.go: format selection (table, json, yaml)
//   - table.go: reflection-driven tables honouring `table:"-"` and `table:"wide"` tags
//   - json.go, yaml.go: structured encoders
//   - spinner.go, progress.go: stderr feedback for slow calls and uploads
package output
