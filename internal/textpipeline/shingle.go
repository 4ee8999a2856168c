package textpipeline

// K is the shingle width, fixed by the wire format: changing it would shift
// every hash already persisted in an index.
const K = 9

const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
)

// FNV1a64 computes the standard 64-bit FNV-1a hash of data.
func FNV1a64(data []byte) uint64 {
	h := fnvOffsetBasis
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}

// HashShingle hashes the K-token window starting at spans[pos] into a single
// 64-bit shingle hash. Builder and searcher both call this, so the folding
// order (token hash, then separator byte, each with its own multiply step)
// must never change.
func HashShingle(norm []byte, spans []TokenSpan, pos int) uint64 {
	h := fnvOffsetBasis
	for i := 0; i < K; i++ {
		t := spans[pos+i]
		th := FNV1a64(t.Bytes(norm))
		h ^= th
		h *= fnvPrime
		h ^= 0x0A
		h *= fnvPrime
	}
	return h
}
