package textpipeline

// TokenSpan is a byte-offset window into a normalized text buffer. It never
// spans a space; spans are non-empty, non-overlapping, and given in
// ascending order.
type TokenSpan struct {
	Start uint32
	Len   uint32
}

// Bytes returns the token's bytes in norm.
func (s TokenSpan) Bytes(norm []byte) []byte {
	return norm[s.Start : s.Start+s.Len]
}

// Tokenize splits normalized text into maximal runs of non-space bytes.
// Empty input yields an empty, non-nil slice.
func Tokenize(norm []byte) []TokenSpan {
	spans := make([]TokenSpan, 0, len(norm)/6+1)
	n := uint32(len(norm))
	var i uint32
	for i < n {
		for i < n && norm[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		j := i
		for j < n && norm[j] != ' ' {
			j++
		}
		spans = append(spans, TokenSpan{Start: i, Len: j - i})
		i = j
	}
	return spans
}
