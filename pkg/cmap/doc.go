// Package cmap provides a generic concurrent map split into shards, each
// guarded by its own RWMutex.
//
//	m := cmap.New[string, []byte]()
//	m.Set("key", value)
//	v, ok := m.Get("key")
package cmap
