// Package store provides the SQLite-backed cache for fetched
// documentation pages, keyed by URL with a freshness TTL.
package store
