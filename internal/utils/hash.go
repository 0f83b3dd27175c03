package utils

import "hash/fnv"

// HashStringToUint64 gives a stable FNV-1a hash, used to derive deterministic
// mock classifications from complaint text.
func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
