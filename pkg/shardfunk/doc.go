// Package shardfunk is a client side router for a set of independent
// key-value backends. Each shard is a primary connection with optional read
// replicas. Keys map to shards with a stable hash of the key so every
// process with the same topology routes the same way.
//
// Read-only commands can be spread round robin across the replicas of a
// shard. When a replica fails or times out the call moves on to the next
// replica in the rotation and finally to the primary. A failing primary ends
// the call. Each connection may have a circuit breaker that fails calls fast
// while the breaker is open.
//
// All calls are asynchronous. The callback for a call is invoked exactly once,
// even if a backend replies after the call has timed out.
//
// Policy variants (replica reads, other timeouts) are created with
// PreferReplica, WithReadTimeout and WithWriteTimeout. The variants share
// the shard table and connections with the router they're created from.
package shardfunk
