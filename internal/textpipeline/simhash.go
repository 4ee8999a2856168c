package textpipeline

const golden64 uint64 = 0x9e3779b97f4a7c15

// mix64 is the splitmix64 finalizer, used to derive a second, independent
// 64-bit hash from h1 for the low half of the fingerprint.
func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// SimHash128 computes the 128-bit SimHash fingerprint of a token stream.
// Bit b of hi is set iff the majority of tokens had bit b of h1 set; ties
// (a zero counter) resolve to 1. lo is the same vote over h2 = mix64(h1 ^
// golden). This tie-breaking convention must stay fixed for reproducibility.
func SimHash128(norm []byte, spans []TokenSpan) (hi, lo uint64) {
	var acc1, acc2 [64]int32
	for _, t := range spans {
		h1 := FNV1a64(t.Bytes(norm))
		h2 := mix64(h1 ^ golden64)
		for b := 0; b < 64; b++ {
			if (h1>>uint(b))&1 != 0 {
				acc1[b]++
			} else {
				acc1[b]--
			}
			if (h2>>uint(b))&1 != 0 {
				acc2[b]++
			} else {
				acc2[b]--
			}
		}
	}
	for b := 0; b < 64; b++ {
		if acc1[b] >= 0 {
			hi |= 1 << uint(b)
		}
		if acc2[b] >= 0 {
			lo |= 1 << uint(b)
		}
	}
	return hi, lo
}
