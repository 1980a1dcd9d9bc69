package codec

// ZeroEncode run-length encodes zero bytes: a zero byte is followed by a
// count byte giving the number of zeros in the run (1-255). Non-zero bytes
// are emitted literally. A run longer than 255 is split: the encoder emits
// 0x00 0xFF and restarts counting from the next byte.
func ZeroEncode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		if data[i] != 0 {
			out = append(out, data[i])
			i++
			continue
		}
		run := 0
		for i < len(data) && data[i] == 0 && run < 255 {
			run++
			i++
		}
		out = append(out, 0x00, byte(run))
	}
	return out
}

// ZeroDecode reverses ZeroEncode. It never panics: a truncated count byte
// (a trailing 0x00 with nothing after it) yields MalformedBody.
func ZeroDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	i := 0
	for i < len(data) {
		b := data[i]
		if b != 0 {
			out = append(out, b)
			i++
			continue
		}
		i++
		if i >= len(data) {
			return nil, ErrMalformedBody
		}
		count := int(data[i])
		i++
		if count == 0 {
			return nil, ErrMalformedBody
		}
		for n := 0; n < count; n++ {
			out = append(out, 0)
		}
	}
	return out, nil
}
