// Package wire holds the small binary read/write helpers shared by every
// message body decoder: the wire protocol uses little-endian scalars,
// null-terminated short strings, and 1- or 2-byte length-prefixed
// variable blocks, regardless of which message carries them.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
)

var ErrShortBuffer = errors.New("wire: buffer too short")

type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Bool() (bool, error) {
	b, err := r.U8()
	return b != 0, err
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) UUID() (uuid.UUID, error) {
	b, err := r.take(16)
	if err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

// CString reads a null-terminated string, SL's convention for short
// fixed-ish text fields (region names, teleport progress text).
func (r *Reader) CString() (string, error) {
	idx := bytes.IndexByte(r.buf[r.pos:], 0)
	if idx < 0 {
		return "", ErrShortBuffer
	}
	s := string(r.buf[r.pos : r.pos+idx])
	r.pos += idx + 1
	return s, nil
}

// Var1 reads a 1-byte length prefix followed by that many bytes.
func (r *Reader) Var1() ([]byte, error) {
	n, err := r.U8()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

// Var2 reads a 2-byte length prefix followed by that many bytes.
func (r *Reader) Var2() ([]byte, error) {
	n, err := r.U16()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// Rest returns every remaining byte.
func (r *Reader) Rest() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}

type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) U8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

func (w *Writer) UUID(u uuid.UUID) { w.buf.Write(u[:]) }

func (w *Writer) CString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

func (w *Writer) Var1(b []byte) {
	w.U8(uint8(len(b)))
	w.buf.Write(b)
}

func (w *Writer) Var2(b []byte) {
	w.U16(uint16(len(b)))
	w.buf.Write(b)
}

func (w *Writer) Raw(b []byte) { w.buf.Write(b) }
