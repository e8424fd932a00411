// Package ttlcache provides a bounded in-memory cache with time-based
// expiry, used to memoize upstream API responses.
package ttlcache
