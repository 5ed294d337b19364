package javaio

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// reader is a cursor over an immutable buffer. All multi-byte values
// are big-endian.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) offset() int { return r.pos }

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) hasMore() bool { return r.pos < len(r.data) }

// take returns the next n bytes without copying.
func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, newError(KindTruncated, r.pos, "need %d bytes, %d left", n, r.remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readInt8() (int8, error) {
	v, err := r.readUint8()
	return int8(v), err
}

func (r *reader) readBool() (bool, error) {
	v, err := r.readUint8()
	return v != 0, err
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) readInt16() (int16, error) {
	v, err := r.readUint16()
	return int16(v), err
}

// readChar reads one UTF-16 code unit. Lone surrogates become U+FFFD.
func (r *reader) readChar() (string, error) {
	v, err := r.readUint16()
	if err != nil {
		return "", err
	}
	return string(utf16.Decode([]uint16{v})), nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *reader) readFloat32() (float32, error) {
	v, err := r.readUint32()
	return math.Float32frombits(v), err
}

func (r *reader) readFloat64() (float64, error) {
	v, err := r.readUint64()
	return math.Float64frombits(v), err
}

// readUTF reads a string with a 16-bit length prefix.
func (r *reader) readUTF() (string, error) {
	l, err := r.readUint16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(l))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readBytes returns a copy of the next n bytes.
func (r *reader) readBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}
