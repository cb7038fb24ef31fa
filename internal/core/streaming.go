package core

// streaming.go provides the reader wrappers applied to every import before
// it reaches the CSV parser:
//
//   - the UTF-8 BOM written by Windows tools is dropped
//   - invalid UTF-8 bytes are replaced with '?'
//   - bytes read are counted for logging and metrics
//
// Use WrapForImport to apply all three in the right order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SanitizingReader strips a leading UTF-8 BOM and replaces invalid UTF-8
// bytes with '?' as data is read.
type SanitizingReader struct {
	br       *bufio.Reader
	pending  []byte
	bomCheck bool
}

// NewSanitizingReader wraps r.
func NewSanitizingReader(r io.Reader) *SanitizingReader {
	return &SanitizingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !r.bomCheck {
		r.bomCheck = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			r.br.Discard(len(utf8BOM))
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	var buf [utf8.UTFMax]byte
	for n < len(p) {
		// Return what we have rather than block on the underlying reader.
		if n > 0 && r.br.Buffered() == 0 {
			break
		}

		rn, size, err := r.br.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}

		enc := buf[:0]
		if rn == utf8.RuneError && size == 1 {
			enc = append(enc, '?')
		} else {
			enc = buf[:utf8.EncodeRune(buf[:], rn)]
		}

		c := copy(p[n:], enc)
		n += c
		if c < len(enc) {
			r.pending = append(r.pending[:0], enc[c:]...)
		}
	}

	return n, nil
}

// CountingReader tracks the number of bytes read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapForImport counts raw bytes, then strips the BOM and sanitizes UTF-8.
// The returned counter reports raw input size, the reader yields clean text.
func WrapForImport(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return NewSanitizingReader(counter), counter
}
