package recbin

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Decoder is a non-allocating cursor over a RecBin-encoded item. It
// never copies the underlying buffer; child views returned by Elem
// are slices into the same backing array, matching the teacher's
// rlp.Stream/trie decodeNode style of cropping rather than copying.
type Decoder struct {
	buf []byte // the full item: header + payload

	isNull  bool
	kind    Kind
	hdrLen  int // bytes consumed by the header (and, for long forms, the length field)
	payLen  int // declared payload length in bytes
	invalid error
}

// NewDecoder parses the header at the start of buf. A zero-length buf
// is null: distinct from an encoded empty string (0x40) or empty list
// (0x80), which are zero-payload but not null.
func NewDecoder(buf []byte) Decoder {
	if len(buf) == 0 {
		return Decoder{buf: buf, isNull: true}
	}
	d := Decoder{buf: buf}
	d.kind, d.hdrLen, d.payLen, d.invalid = parseHeader(buf)
	return d
}

// parseHeader classifies the first byte of buf and, for long forms,
// reads the length field. It never reads past len(buf).
func parseHeader(buf []byte) (kind Kind, hdrLen, payLen int, err error) {
	b0 := buf[0]
	switch {
	case b0 <= intDirectMax:
		return KindInt, 0, 1, nil

	case b0 <= intShortMax:
		n := int(b0-intShortMin) + 1
		return classifyLenPrefixed(buf, KindInt, 1, n)

	case b0 <= intMediumMax:
		n := int(b0-intMediumMin) + 9
		return classifyLenPrefixed(buf, KindInt, 1, n)

	case b0 <= intLongMax:
		return parseLongForm(buf, KindInt, intLongMin)

	case b0 <= strShortMax:
		n := int(b0 - strShortMin)
		return classifyLenPrefixed(buf, KindString, 1, n)

	case b0 <= strLongMax:
		return parseLongForm(buf, KindString, strLongMin)

	case b0 <= listShortMax:
		n := int(b0 - listShortMin)
		return classifyLenPrefixed(buf, KindList, 1, n)

	case b0 <= listLongMax:
		return parseLongForm(buf, KindList, listLongMin)

	default: // 0xc0-0xff, reserved
		return 0, 0, 0, malformed(0, "reserved leading byte")
	}
}

// classifyLenPrefixed validates that a fixed-size payload of n bytes
// fits in buf after a header of hdrLen bytes, and that integer
// payloads are minimally encoded (no leading zero byte).
func classifyLenPrefixed(buf []byte, kind Kind, hdrLen, n int) (Kind, int, int, error) {
	if hdrLen+n > len(buf) {
		return 0, 0, 0, malformed(0, "declared length exceeds buffer")
	}
	if kind == KindInt && hasLeadingZero(buf[hdrLen:hdrLen+n]) {
		return 0, 0, 0, malformed(0, "non-minimal integer encoding")
	}
	return kind, hdrLen, n, nil
}

// parseLongForm reads the length-of-length field that follows the
// leading byte for long-form integers/strings/lists, then the length
// field itself, validating minimality and bounds throughout.
func parseLongForm(buf []byte, kind Kind, base byte) (Kind, int, int, error) {
	lenOfLen := int(buf[0]-base) + 1
	if 1+lenOfLen > len(buf) {
		return 0, 0, 0, malformed(0, "truncated length field")
	}
	lenField := buf[1 : 1+lenOfLen]
	if lenField[0] == 0 {
		return 0, 0, 0, malformed(0, "non-minimal length field")
	}
	var n uint64
	for _, b := range lenField {
		n = n<<8 | uint64(b)
	}
	if n > uint64(^uint(0)>>1) {
		return 0, 0, 0, malformed(0, "declared length overflows int")
	}
	hdrLen := 1 + lenOfLen
	if uint64(hdrLen)+n > uint64(len(buf)) {
		return 0, 0, 0, malformed(0, "declared length exceeds buffer")
	}
	if kind == KindInt && hasLeadingZero(buf[hdrLen:hdrLen+int(n)]) {
		return 0, 0, 0, malformed(0, "non-minimal integer encoding")
	}
	return kind, hdrLen, int(n), nil
}

// IsNull reports whether the cursor has no item at all (a zero-length
// buffer), as opposed to an encoded empty string or list.
func (d Decoder) IsNull() bool { return d.isNull }

// IsEmpty reports whether the item is a string or list with a
// zero-byte payload (the canonical empty string 0x40 or empty list
// 0x80).
func (d Decoder) IsEmpty() bool {
	if d.isNull || d.invalid != nil {
		return false
	}
	return (d.kind == KindString || d.kind == KindList) && d.payLen == 0
}

// IsString reports whether the item is a byte string.
func (d Decoder) IsString() bool { return d.invalid == nil && !d.isNull && d.kind == KindString }

// IsList reports whether the item is a list.
func (d Decoder) IsList() bool { return d.invalid == nil && !d.isNull && d.kind == KindList }

// IsInt reports whether the item is an integer.
func (d Decoder) IsInt() bool { return d.invalid == nil && !d.isNull && d.kind == KindInt }

// Size returns the total number of bytes (header + payload) occupied
// by this item, for advancing a cursor past it. It propagates a
// malformed-encoding error detected while parsing the header.
func (d Decoder) Size() (int, error) {
	if d.invalid != nil {
		return 0, d.invalid
	}
	if d.isNull {
		return 0, nil
	}
	return d.hdrLen + d.payLen, nil
}

// Raw returns the raw encoded bytes (header + payload) of this item,
// e.g. for embedding a sub-tree's encoding or hashing it whole.
func (d Decoder) Raw() []byte {
	if d.invalid != nil || d.isNull {
		return nil
	}
	return d.buf[:d.hdrLen+d.payLen]
}

// Bytes extracts the payload as a byte string. Called on a
// non-string item it returns (nil, nil): a type mismatch, not a
// decode failure (spec.md §7).
func (d Decoder) Bytes() ([]byte, error) {
	if d.invalid != nil {
		return nil, d.invalid
	}
	if d.isNull || d.kind != KindString {
		return nil, nil
	}
	return d.buf[d.hdrLen : d.hdrLen+d.payLen], nil
}

// Uint64 extracts the payload as a uint64. A type mismatch returns
// (0, nil); a value too wide to fit returns a MalformedEncoding-style
// error naming the overflow.
func (d Decoder) Uint64() (uint64, error) {
	if d.invalid != nil {
		return 0, d.invalid
	}
	if d.isNull || d.kind != KindInt {
		return 0, nil
	}
	payload := d.buf[d.hdrLen : d.hdrLen+d.payLen]
	if len(payload) > 8 {
		return 0, malformed(0, "integer too large for uint64")
	}
	var x uint64
	for _, b := range payload {
		x = x<<8 | uint64(b)
	}
	return x, nil
}

// Uint256 extracts the payload as a 256-bit integer.
func (d Decoder) Uint256() (*uint256.Int, error) {
	if d.invalid != nil {
		return nil, d.invalid
	}
	if d.isNull || d.kind != KindInt {
		return new(uint256.Int), nil
	}
	payload := d.buf[d.hdrLen : d.hdrLen+d.payLen]
	if len(payload) > 32 {
		return nil, malformed(0, "integer too large for uint256")
	}
	return new(uint256.Int).SetBytes(payload), nil
}

// BigInt extracts the payload as an arbitrary-precision integer.
func (d Decoder) BigInt() (*big.Int, error) {
	if d.invalid != nil {
		return nil, d.invalid
	}
	if d.isNull || d.kind != KindInt {
		return new(big.Int), nil
	}
	payload := d.buf[d.hdrLen : d.hdrLen+d.payLen]
	return new(big.Int).SetBytes(payload), nil
}

// Len returns the number of elements in a list, walking the payload
// to find each child's size. A type mismatch returns (0, nil).
func (d Decoder) Len() (int, error) {
	if d.invalid != nil {
		return 0, d.invalid
	}
	if d.isNull || d.kind != KindList {
		return 0, nil
	}
	payload := d.buf[d.hdrLen : d.hdrLen+d.payLen]
	count := 0
	for len(payload) > 0 {
		child := NewDecoder(payload)
		sz, err := child.Size()
		if err != nil {
			return 0, err
		}
		if sz == 0 || sz > len(payload) {
			return 0, malformed(0, "list child overflows declared payload")
		}
		payload = payload[sz:]
		count++
	}
	return count, nil
}

// Elem returns a cursor over the i-th element of a list, found by
// walking from the start of the payload: indexing is O(index). A
// type mismatch or out-of-range index returns a null Decoder, not an
// error.
func (d Decoder) Elem(i int) (Decoder, error) {
	if d.invalid != nil {
		return Decoder{}, d.invalid
	}
	if d.isNull || d.kind != KindList || i < 0 {
		return Decoder{isNull: true}, nil
	}
	payload := d.buf[d.hdrLen : d.hdrLen+d.payLen]
	for idx := 0; len(payload) > 0; idx++ {
		child := NewDecoder(payload)
		sz, err := child.Size()
		if err != nil {
			return Decoder{}, err
		}
		if sz == 0 || sz > len(payload) {
			return Decoder{}, malformed(0, "list child overflows declared payload")
		}
		if idx == i {
			return NewDecoder(payload[:sz]), nil
		}
		payload = payload[sz:]
	}
	return Decoder{isNull: true}, nil
}
