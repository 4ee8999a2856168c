package indexbuilder

// On-disk layout of index_native.bin. Little-endian, no padding. Shared by
// the builder (writer.go) and internal/searchcore (the reader); both sides
// must agree on every offset and width documented here.
const (
	MagicByte0 byte = 'P'
	MagicByte1 byte = 'L'
	MagicByte2 byte = 'A'
	MagicByte3 byte = 'G'

	FormatVersion uint32 = 1

	// HeaderSize is the fixed-size region preceding the DocMeta array:
	// magic(4) + version(4) + N_docs(4) + N_post9(8) + N_post13(8).
	HeaderSize = 4 + 4 + 4 + 8 + 8

	// DocMetaSize is the width of one DocMeta record: tok_len(4) +
	// simhash_hi(8) + simhash_lo(8).
	DocMetaSize = 4 + 8 + 8

	// PostingSize is the width of one Posting record: shingle_hash(8) +
	// doc_idx(4).
	PostingSize = 8 + 4
)

// DocMeta is one per accepted document, written in acceptance order.
type DocMeta struct {
	TokLen    uint32
	SimHashHi uint64
	SimHashLo uint64
}

// Posting is a (shingle_hash, doc_idx) pair. Duplicates are permitted and
// expected: the same shingle can recur within a document and across
// documents.
type Posting struct {
	ShingleHash uint64
	DocIdx      uint32
}
