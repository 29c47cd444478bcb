// Package gencache is a generational, partition-aware caching strategy that
// sits in front of a repository. Query results are never deleted on writes;
// instead every key embeds a generation counter, and a write bumps the
// counter so old keys become unreachable and age out of the provider.
//
// Components:
//   - Provider: byte store with TTL, priorities and atomic Increment
//     (memory, Ristretto, BigCache, sturdyc, Redis).
//   - Codec[T]: (de)serializes T <-> []byte.
//   - generation.Manager: per-type and per-partition counters, plus a
//     Cluster counter that flushes every type at once.
//   - partition.Resolver[T]: scopes queries and writes to one partition value
//     so a write in partition A leaves cached queries for partition B alone.
//
// Keys:
//
//	{prefix}{cluster}-{clear}/{type}/{gen}/{op}/{fingerprint}
//	{prefix}{cluster}-{clear}/{type}/p:{value}/{partitionGen}/{op}/{fingerprint}
//	{prefix}{cluster}-{clear}/{type}/id/{keyValues}   (write-through)
//
// Read pattern:
//
//	res, t, ok := s.TryFindAllResult(ctx, crit, opts, nil)
//	if !ok {
//	    res = runQuery(crit, opts)
//	    _ = s.SaveFindAllResult(ctx, t, res) // stored under the generation observed by Try
//	}
//
// The Ticket returned by a lookup pins the key, so a result computed before a
// concurrent write is stored under the abandoned generation and never read.
package gencache
