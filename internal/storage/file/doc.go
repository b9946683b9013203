// Package file stores token values as files under a private directory.
//
// Each key maps to one file whose name is the query-escaped key. Writes go
// to a temporary file that is renamed into place, so a concurrent reader
// sees either the old or the new value. Every process on the host shares
// the directory; Watch reports changes made by any of them.
package file
