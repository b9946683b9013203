// Package memory provides a process-local token store backend.
package memory
