package codegraph

import "github.com/minio/highwayhash"

// hashKey is the fixed 32-byte HighwayHash key. It is a constant, not a
// secret: node_id only needs to be a strong, stable, non-cryptographic
// fingerprint.
var hashKey = []byte("CGENGINE0123456789ABCDEFCGENGINE")

// Hash derives the deterministic 128-bit node_id for (env, path). It is a
// pure function: identical inputs always produce an identical NodeID,
// and two different (env, path) pairs are vanishingly unlikely to
// collide (the "strong non-cryptographic 128-bit function" required by
// spec §4.4).
func Hash(env Environment, path string) (NodeID, error) {
	data := make([]byte, 0, len(env.Key())+1+len(path))
	data = append(data, env.Key()...)
	data = append(data, 0)
	data = append(data, path...)

	h, err := highwayhash.New128(hashKey)
	if err != nil {
		return NodeID{}, err
	}
	if _, err := h.Write(data); err != nil {
		return NodeID{}, err
	}

	var id NodeID
	copy(id[:], h.Sum(nil))
	return id, nil
}

// MustHash panics on hashing failure; used only where the key has already
// been validated once at process start (e.g. in package init or tests).
func MustHash(env Environment, path string) NodeID {
	id, err := Hash(env, path)
	if err != nil {
		panic(err)
	}
	return id
}
