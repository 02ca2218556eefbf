// Package store holds the gateway's short-lived OAuth state: pending
// authorization sessions, authorization codes, access tokens and refresh
// tokens. Every entry carries a TTL; expiry is enforced at read time, and
// a background sweep reclaims memory for entries nobody reads again.
//
// All operations are atomic with respect to concurrent callers touching
// the same key. Consume (read+delete under one lock) is what makes
// single-use semantics race-free: two concurrent redemptions of the same
// code see exactly one winner.
//
// The in-memory implementation is the only one shipped; Store is an
// interface so a shared cache can replace it without touching the flows.
package store
