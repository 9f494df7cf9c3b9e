package recbin

import "math/big"

// minimalUint64Bytes returns the big-endian encoding of x using the
// fewest bytes possible, with no leading zero byte. x == 0 yields an
// empty slice; callers needing the direct-range special case (the
// integer 0 encodes as the single byte 0x00) handle that separately.
func minimalUint64Bytes(x uint64) []byte {
	if x == 0 {
		return nil
	}
	var buf [8]byte
	buf[0] = byte(x >> 56)
	buf[1] = byte(x >> 48)
	buf[2] = byte(x >> 40)
	buf[3] = byte(x >> 32)
	buf[4] = byte(x >> 24)
	buf[5] = byte(x >> 16)
	buf[6] = byte(x >> 8)
	buf[7] = byte(x)
	i := 0
	for i < len(buf) && buf[i] == 0 {
		i++
	}
	out := make([]byte, len(buf)-i)
	copy(out, buf[i:])
	return out
}

// minimalBigBytes returns x's big-endian encoding with no leading zero
// byte. math/big.Int.Bytes already drops leading zeros and returns an
// empty slice for zero.
func minimalBigBytes(x *big.Int) []byte {
	return x.Bytes()
}

// lengthBytes encodes a non-zero length n using the minimum number of
// big-endian bytes, for use as the length-of-length / length field of
// long-form strings, lists and integers.
func lengthBytes(n uint64) []byte {
	return minimalUint64Bytes(n)
}

// hasLeadingZero reports whether b (len(b) > 1) starts with a zero
// byte, which would make it a non-minimal encoding.
func hasLeadingZero(b []byte) bool {
	return len(b) > 1 && b[0] == 0
}
