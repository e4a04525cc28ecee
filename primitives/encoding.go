package primitives

import (
	"encoding/binary"
	"errors"
)

// Encoder builds the canonical, field-order-stable, little-endian,
// length-prefixed byte encoding used for both hashing and signing.
// Every Write* call is injective in sequence: two structurally equal
// values always produce byte-identical output.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder { return &Encoder{buf: make([]byte, 0, 128)} }

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) WriteU8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) WriteU64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

func (e *Encoder) WriteI64(v int64) *Encoder {
	return e.WriteU64(uint64(v))
}

// WriteVarUint writes an unsigned LEB128 varint, used to length-prefix
// variable-length fields.
func (e *Encoder) WriteVarUint(v uint64) *Encoder {
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf = append(e.buf, tmp[:n]...)
	return e
}

// WriteBytes length-prefixes then appends raw bytes.
func (e *Encoder) WriteBytes(b []byte) *Encoder {
	e.WriteVarUint(uint64(len(b)))
	e.buf = append(e.buf, b...)
	return e
}

// WriteFixed appends raw fixed-width bytes without a length prefix,
// for fields whose width is already fixed by the type (hashes, ids,
// signatures).
func (e *Encoder) WriteFixed(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// WriteString length-prefixes a UTF-8 string.
func (e *Encoder) WriteString(s string) *Encoder {
	return e.WriteBytes([]byte(s))
}

// WriteBool encodes a boolean as a single byte.
func (e *Encoder) WriteBool(v bool) *Encoder {
	if v {
		return e.WriteU8(1)
	}
	return e.WriteU8(0)
}

// Decoder walks a canonical encoding produced by Encoder, in the same
// field order the writer used.
type Decoder struct {
	buf []byte
	pos int
}

func NewDecoder(b []byte) *Decoder { return &Decoder{buf: b} }

var errShortBuffer = errors.New("primitives: unexpected end of buffer")

func (d *Decoder) ReadU8() (uint8, error) {
	if d.pos+1 > len(d.buf) {
		return 0, errShortBuffer
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) ReadU64() (uint64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *Decoder) ReadI64() (int64, error) {
	v, err := d.ReadU64()
	return int64(v), err
}

func (d *Decoder) ReadVarUint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.pos:])
	if n <= 0 {
		return 0, errShortBuffer
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadVarUint()
	if err != nil {
		return nil, err
	}
	if d.pos+int(n) > len(d.buf) {
		return nil, errShortBuffer
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, errShortBuffer
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	return string(b), err
}

func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadU8()
	return v != 0, err
}

func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }
