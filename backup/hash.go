package backup

// hashlittleInt32 implements Bob Jenkins' public-domain "hashlittle" (from
// lookup3.c) restricted to the one call shape the backup log format needs:
// hashing a single little-endian int32 with a zero seed, then taking its
// low byte as the record key's hash validation byte (spec.md §4.9 Record
// key decoding; original_source/fdbbackup/FileDecoder.actor.cpp
// decode_key). No example or ecosystem package implements this exact
// legacy hash, so it's reproduced directly from the reference algorithm
// rather than wired to a third-party hash.
func hashlittleInt32(v int32) byte {
	const length = 4
	a := uint32(0xdeadbeef) + length
	b := a
	c := a

	a += uint32(v)
	// final() mix, lookup3.c
	c ^= b
	c -= rot(b, 14)
	a ^= c
	a -= rot(c, 11)
	b ^= a
	b -= rot(a, 25)
	c ^= b
	c -= rot(b, 16)
	a ^= c
	a -= rot(c, 4)
	b ^= a
	b -= rot(a, 14)
	c ^= b
	c -= rot(b, 24)

	return byte(c)
}

func rot(x uint32, k uint) uint32 {
	return (x << k) | (x >> (32 - k))
}
