// Package storage defines the key/value substrate behind the LifeOS store.
//
// A substrate persists opaque byte payloads under string keys. Semantics such
// as namespaces, quotas and change events live in the store adapter built on
// top; implementations (bbolt, sqlite, memory) live in subpackages.
//
// # Error Types
//
//   - ErrNotFound: the requested key is missing.
//   - ErrClosed: the substrate was closed and can no longer serve requests.
package storage
