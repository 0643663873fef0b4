// Package archive implements the little-endian binary blob format used to
// serialize cartridge RAM and RTC state for battery-backed saves.
//
// It is a direct port of the cursor-based reader/writer pattern used by the
// original implementation this core is modeled on (a C++ Archive type with
// templated read<T>/write<T> over a byte cursor): a Writer appends
// fixed-width little-endian values to a growing buffer, and a Reader
// consumes them back in the same order.
package archive

import "fmt"

// Writer appends little-endian values to an in-memory byte buffer.
type Writer struct {
	data []byte
}

// NewWriter creates an empty Writer. sizeHint preallocates the backing
// buffer to reduce reallocation; it is not a hard limit.
func NewWriter(sizeHint int) *Writer {
	return &Writer{data: make([]byte, 0, sizeHint)}
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(v uint8) {
	w.data = append(w.data, v)
}

// WriteBytes appends a raw slice verbatim.
func (w *Writer) WriteBytes(v []byte) {
	w.data = append(w.data, v...)
}

// WriteUint16 appends a 16-bit value, low byte first.
func (w *Writer) WriteUint16(v uint16) {
	w.WriteByte(uint8(v))
	w.WriteByte(uint8(v >> 8))
}

// WriteUint32 appends a 32-bit value, low byte first.
func (w *Writer) WriteUint32(v uint32) {
	w.WriteByte(uint8(v))
	w.WriteByte(uint8(v >> 8))
	w.WriteByte(uint8(v >> 16))
	w.WriteByte(uint8(v >> 24))
}

// WriteInt64 appends a signed 64-bit value, low byte first.
func (w *Writer) WriteInt64(v int64) {
	u := uint64(v)
	for i := range 8 {
		w.WriteByte(uint8(u >> (8 * i)))
	}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.data
}

// Reader consumes little-endian values from a byte buffer in order.
type Reader struct {
	data   []byte
	offset int
}

// NewReader wraps data for sequential reading. data is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// IsAtEnd reports whether every byte has been consumed.
func (r *Reader) IsAtEnd() bool {
	return r.offset == len(r.data)
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("archive: short read, need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// ReadByte consumes a single byte.
func (r *Reader) ReadByte() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

// ReadBytes consumes n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.data[r.offset : r.offset+n]
	r.offset += n
	return v, nil
}

// ReadUint16 consumes a 16-bit little-endian value.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadUint32 consumes a 32-bit little-endian value.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadInt64 consumes a signed 64-bit little-endian value.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return int64(u), nil
}
