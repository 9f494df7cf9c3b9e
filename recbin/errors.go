package recbin

import "fmt"

// MalformedEncoding is returned whenever the decoder encounters a byte
// stream that cannot possibly be a valid RecBin encoding: a reserved
// leading byte, a declared length that overruns the buffer, a
// non-minimal length or integer, or list children that overflow their
// declared payload (spec.md §4.1 "Errors", §7).
type MalformedEncoding struct {
	Offset int    // byte offset within the buffer passed to the decoder
	Reason string // short, human-readable reason
}

func (e *MalformedEncoding) Error() string {
	return fmt.Sprintf("recbin: malformed encoding at offset %d: %s", e.Offset, e.Reason)
}

func malformed(offset int, reason string) error {
	return &MalformedEncoding{Offset: offset, Reason: reason}
}
