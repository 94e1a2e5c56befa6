// Package rawframe reads and writes depth frames stored as raw little-endian
// uint16 samples, one frame after another with no header.
package rawframe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/kingrid/internal/domain"
)

// ErrTruncated is returned when a stream ends in the middle of a frame.
var ErrTruncated = errors.New("rawframe: truncated frame")

// FrameBytes returns the encoded size of one width x height frame.
func FrameBytes(width, height int) int {
	return width * height * 2
}

// Decoder reads consecutive frames of a fixed resolution.
type Decoder struct {
	r      io.Reader
	width  int
	height int
	buf    []byte
}

// NewDecoder returns a decoder for width x height frames read from r.
func NewDecoder(r io.Reader, width, height int) *Decoder {
	return &Decoder{
		r:      r,
		width:  width,
		height: height,
		buf:    make([]byte, FrameBytes(width, height)),
	}
}

// Reset switches the decoder to a new reader, keeping its buffers.
func (d *Decoder) Reset(r io.Reader) {
	d.r = r
}

// Decode reads the next frame into f, reusing f.Depth when it is large enough.
// Returns io.EOF at a clean frame boundary and ErrTruncated otherwise.
func (d *Decoder) Decode(f *domain.Frame) error {
	n, err := io.ReadFull(d.r, d.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, n, len(d.buf))
		}
		return err
	}
	return DecodeInto(f, d.buf, d.width, d.height)
}

// DecodeInto fills f from one encoded frame held in b.
func DecodeInto(f *domain.Frame, b []byte, width, height int) error {
	if len(b) != FrameBytes(width, height) {
		return fmt.Errorf("%w: %d bytes for a %dx%d frame", ErrTruncated, len(b), width, height)
	}
	pixels := width * height
	if cap(f.Depth) < pixels {
		f.Depth = make([]uint16, pixels)
	}
	f.Depth = f.Depth[:pixels]
	for i := range f.Depth {
		f.Depth[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	f.Width = width
	f.Height = height
	return nil
}

// Encode writes one frame to w.
func Encode(w io.Writer, f domain.Frame) error {
	b := make([]byte, 2*len(f.Depth))
	for i, v := range f.Depth {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	_, err := w.Write(b)
	return err
}
