// Package store defines the persistence contracts for users and tasks.
// Implementations provide per-row atomicity; the store is the only point where
// concurrent writers are serialized.
package store
