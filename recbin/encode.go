package recbin

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Encoder builds a RecBin-encoded buffer incrementally. It mirrors the
// teacher's encBuffer/EncoderBuffer split between a flat accumulation
// buffer and deferred list-header writes, adapted to RecBin's own
// byte-partition table and to appendList's declared-arity contract: a
// list's element count is known up front, so the encoder can tell when
// a list is complete and fold its header in automatically instead of
// requiring an explicit close call.
type Encoder struct {
	frames []frame
}

type frame struct {
	buf       []byte
	remaining int // -1 means unbounded (the root frame)
}

// NewEncoder returns an Encoder ready to accept a single top-level
// value via AppendInt/AppendUint256/AppendBigInt/AppendBytes/
// AppendList/AppendRaw.
func NewEncoder() *Encoder {
	return &Encoder{frames: []frame{{remaining: -1}}}
}

func (e *Encoder) top() *frame { return &e.frames[len(e.frames)-1] }

// emit appends an already-encoded element into the current frame and,
// if that frame's declared arity is now satisfied, closes it (which
// may cascade into closing its parent too).
func (e *Encoder) emit(b []byte) {
	f := e.top()
	f.buf = append(f.buf, b...)
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			e.closeList()
		}
	}
}

// closeList pops the current frame, wraps its accumulated payload with
// a list header, and emits the wrapped bytes into the parent frame.
func (e *Encoder) closeList() {
	n := len(e.frames)
	f := e.frames[n-1]
	e.frames = e.frames[:n-1]
	e.emit(encodeListHeader(len(f.buf), f.buf))
}

// AppendList opens a list declaring exactly n subsequent top-level
// appends (at the current nesting level) as its elements. n == 0
// immediately yields the canonical empty list, 0x80.
func (e *Encoder) AppendList(n int) {
	e.frames = append(e.frames, frame{remaining: n})
	if n == 0 {
		e.closeList()
	}
}

// AppendRaw appends a pre-encoded RecBin fragment as a single element,
// verbatim. Used to splice in an already-hashed or already-encoded
// sub-tree without re-parsing it.
func (e *Encoder) AppendRaw(b []byte) {
	e.emit(b)
}

// AppendBytes appends a byte string.
func (e *Encoder) AppendBytes(b []byte) {
	e.emit(encodeStringHeader(len(b), b))
}

// AppendInt appends a uint64-valued integer.
func (e *Encoder) AppendInt(x uint64) {
	e.emit(encodeIntBytes(minimalUint64Bytes(x)))
}

// AppendUint256 appends a 256-bit integer. Like AppendInt, it uses the
// smallest row of the byte-layout table that fits the value: direct,
// short, or (for 9 to 32 payload bytes) medium (0x20..0x37).
func (e *Encoder) AppendUint256(x *uint256.Int) {
	if x.IsZero() {
		e.emit([]byte{0x00})
		return
	}
	b := x.Bytes() // minimal big-endian, no leading zero
	e.emit(encodeIntBytesRaw(b))
}

// AppendBigInt appends an arbitrary-precision non-negative integer. It
// panics if x is negative: negative integers are out of scope
// (spec.md §1 Non-goals).
func (e *Encoder) AppendBigInt(x *big.Int) {
	if x.Sign() < 0 {
		panic("recbin: negative integers are not supported")
	}
	if x.Sign() == 0 {
		e.emit([]byte{0x00})
		return
	}
	e.emit(encodeIntBytesRaw(minimalBigBytes(x)))
}

// Out returns the accumulated encoding. It is only meaningful once
// every AppendList opened has been closed by reaching its declared
// arity; an unterminated list leaves its bytes unflushed into the
// result.
func (e *Encoder) Out() []byte {
	return e.frames[0].buf
}

// encodeIntBytes handles the zero case (the integer 0 encodes as the
// single byte 0x00) before dispatching to the general path.
func encodeIntBytes(minimal []byte) []byte {
	if len(minimal) == 0 {
		return []byte{0x00}
	}
	return encodeIntBytesRaw(minimal)
}

// encodeIntBytesRaw encodes the minimal big-endian bytes of a
// positive integer using the direct/short/medium/long integer rows of
// the byte-partition table (values below 24 take the direct form here;
// the zero case is handled by callers before reaching here).
func encodeIntBytesRaw(minimal []byte) []byte {
	n := len(minimal)
	switch {
	case n == 1 && minimal[0] < 24:
		return []byte{minimal[0]}
	case n <= 8:
		out := make([]byte, 1+n)
		out[0] = byte(intShortMin + n - 1)
		copy(out[1:], minimal)
		return out
	case n <= 32:
		out := make([]byte, 1+n)
		out[0] = byte(intMediumMin + n - 9)
		copy(out[1:], minimal)
		return out
	default:
		lenb := lengthBytes(uint64(n))
		out := make([]byte, 1+len(lenb)+n)
		out[0] = byte(intLongMin + len(lenb) - 1)
		copy(out[1:], lenb)
		copy(out[1+len(lenb):], minimal)
		return out
	}
}

func encodeStringHeader(n int, payload []byte) []byte {
	if n <= 0x37 {
		out := make([]byte, 1+n)
		out[0] = byte(strShortMin + n)
		copy(out[1:], payload)
		return out
	}
	lenb := lengthBytes(uint64(n))
	out := make([]byte, 1+len(lenb)+n)
	out[0] = byte(strLongMin + len(lenb) - 1)
	copy(out[1:], lenb)
	copy(out[1+len(lenb):], payload)
	return out
}

func encodeListHeader(n int, payload []byte) []byte {
	if n <= 0x37 {
		out := make([]byte, 1+n)
		out[0] = byte(listShortMin + n)
		copy(out[1:], payload)
		return out
	}
	lenb := lengthBytes(uint64(n))
	out := make([]byte, 1+len(lenb)+n)
	out[0] = byte(listLongMin + len(lenb) - 1)
	copy(out[1:], lenb)
	copy(out[1+len(lenb):], payload)
	return out
}
