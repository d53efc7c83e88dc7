package partition

import "hash/fnv"

// For returns the shard an entity key belongs to among n shards.
// Stable and deterministic: the same key always maps to the same shard for a
// given n. n <= 1 always yields shard 0.
func For(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// Group splits keys into n shards, preserving the relative order of keys
// within each shard. Empty shards are kept so shard i is always Group(...)[i].
func Group(keys []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	shards := make([][]string, n)
	for _, k := range keys {
		i := For(k, n)
		shards[i] = append(shards[i], k)
	}
	return shards
}
