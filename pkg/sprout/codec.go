// Package sprout binary codec.
//
// Every Sprout structure is a flat concatenation of fixed-width fields,
// compact-size counts and nested structures:
//
//	uint8 / uint32 / uint64   little-endian
//	uint256 / uint252         32 raw bytes
//	count                     compact-size varint (0xfd/0xfe/0xff prefixes)
//	optional<T>               0x00 | 0x01 || T
//
// Strict decoders (FromBytes) call Reader.Finish and fail when bytes remain.
// Nested decoders (Read) consume exactly their own encoding.
package sprout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// Writer accumulates an encoding. Writes to a bytes.Buffer never fail, so
// none of the methods return an error.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter(sizeHint int) *Writer {
	w := &Writer{}
	w.buf.Grow(sizeHint)
	return w
}

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) WriteSlice(b []byte) { w.buf.Write(b) }

func (w *Writer) WriteUint8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint256(u Uint256) { w.buf.Write(u[:]) }

func (w *Writer) WriteUint252(u Uint252) { w.buf.Write(u.b[:]) }

// WriteVarInt writes a compact-size count.
func (w *Writer) WriteVarInt(n uint64) {
	_ = wire.WriteVarInt(&w.buf, 0, n)
}

// WriteVarSlice writes len(b) as a varint followed by b.
func (w *Writer) WriteVarSlice(b []byte) {
	w.WriteVarInt(uint64(len(b)))
	w.buf.Write(b)
}

// WriteOptional writes the presence tag followed by u when present.
func (w *Writer) WriteOptional(u *Uint256) {
	if u == nil {
		w.buf.WriteByte(0x00)
		return
	}
	w.buf.WriteByte(0x01)
	w.buf.Write(u[:])
}

// VarIntSize is the encoded size of the compact-size count n.
func VarIntSize(n uint64) int {
	return wire.VarIntSerializeSize(n)
}

// VarSliceSize is the encoded size of a length-prefixed slice.
func VarSliceSize(n int) int {
	return VarIntSize(uint64(n)) + n
}

// OptionalSize is the encoded size of an optional uint256.
func OptionalSize(u *Uint256) int {
	if u == nil {
		return 1
	}
	return 1 + HashSize
}

// Reader walks a decode buffer.
type Reader struct {
	r *bytes.Reader
}

func NewReader(b []byte) *Reader {
	return &Reader{r: bytes.NewReader(b)}
}

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int { return r.r.Len() }

func (r *Reader) ReadSlice(n int) ([]byte, error) {
	if n < 0 || r.r.Len() < n {
		return nil, shortBuffer(n, r.r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, shortBuffer(n, 0)
	}
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, shortBuffer(1, 0)
	}
	return b, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadSlice(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadSlice(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadUint256() (Uint256, error) {
	var u Uint256
	if r.r.Len() < HashSize {
		return u, shortBuffer(HashSize, r.r.Len())
	}
	_, _ = io.ReadFull(r.r, u[:])
	return u, nil
}

// ReadUint252 reads 32 bytes and rejects a set top nibble.
func (r *Reader) ReadUint252() (Uint252, error) {
	u, err := r.ReadUint256()
	if err != nil {
		return Uint252{}, err
	}
	return NewUint252(u)
}

// ReadVarInt reads a compact-size count. Non-canonical encodings are rejected.
func (r *Reader) ReadVarInt() (uint64, error) {
	n, err := wire.ReadVarInt(r.r, 0)
	if err != nil {
		return 0, &ValidationError{
			Code:    ErrInvalidEncoding,
			Message: "invalid compact-size count",
			Cause:   err,
		}
	}
	return n, nil
}

// ReadCount reads a varint count and bounds it by what the buffer could
// possibly hold at minElemSize bytes per element.
func (r *Reader) ReadCount(minElemSize int) (int, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if minElemSize > 0 && n > uint64(r.r.Len()/minElemSize) {
		return 0, shortBuffer(int(min(n, 1<<30))*minElemSize, r.r.Len())
	}
	return int(n), nil
}

// ReadVarSlice reads a varint length followed by that many bytes. An empty
// slice decodes as nil.
func (r *Reader) ReadVarSlice() ([]byte, error) {
	n, err := r.ReadCount(1)
	if err != nil || n == 0 {
		return nil, err
	}
	return r.ReadSlice(n)
}

// ReadOptional reads a presence tag and, if set, a uint256.
func (r *Reader) ReadOptional() (*Uint256, error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0x00:
		return nil, nil
	case 0x01:
		u, err := r.ReadUint256()
		if err != nil {
			return nil, err
		}
		return &u, nil
	default:
		return nil, &ValidationError{
			Code:    ErrInvalidEncoding,
			Message: fmt.Sprintf("Invalid optional tag 0x%02x", tag),
		}
	}
}

// Finish fails when any input remains after a strict decode of typeName.
func (r *Reader) Finish(typeName string) error {
	if r.r.Len() != 0 {
		return UnexpectedData(typeName)
	}
	return nil
}

func shortBuffer(want, have int) error {
	return &ValidationError{
		Code:    ErrShortBuffer,
		Message: fmt.Sprintf("need %d bytes, have %d", want, have),
	}
}
