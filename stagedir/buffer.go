package stagedir

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// SectorSize is the alignment unit used throughout the archive format: the
// stage table, every stage's entry table, and every payload block outside a
// cache run start and end on a sector boundary.
const SectorSize = 2048

var zeroSector [SectorSize]byte

// alignUp rounds n up to the next multiple of boundary.
func alignUp(n, boundary int64) int64 {
	return (n + boundary - 1) / boundary * boundary
}

// SectorWriter wraps a seekable writer with the fixed-width little-endian
// primitives and sector padding the archive is built from. It tracks the
// cursor itself so alignment never queries the underlying file.
type SectorWriter struct {
	w   io.WriteSeeker
	pos int64
}

// NewSectorWriter returns a SectorWriter positioned at w's current offset.
func NewSectorWriter(w io.WriteSeeker) (*SectorWriter, error) {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("querying writer offset: %w", err)
	}
	return &SectorWriter{w: w, pos: pos}, nil
}

// Pos returns the current absolute write offset.
func (sw *SectorWriter) Pos() int64 {
	return sw.pos
}

// Seek moves the cursor to the absolute offset pos.
func (sw *SectorWriter) Seek(pos int64) error {
	if _, err := sw.w.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	sw.pos = pos
	return nil
}

// Write writes p in full.
func (sw *SectorWriter) Write(p []byte) error {
	n, err := sw.w.Write(p)
	sw.pos += int64(n)
	return err
}

// Align pads with zero bytes up to the next multiple of boundary. Writes
// nothing when the cursor is already aligned.
func (sw *SectorWriter) Align(boundary int64) error {
	pad := alignUp(sw.pos, boundary) - sw.pos
	for pad > 0 {
		chunk := min(pad, int64(SectorSize))
		if err := sw.Write(zeroSector[:chunk]); err != nil {
			return err
		}
		pad -= chunk
	}
	return nil
}

// WriteU8 writes a single byte.
func (sw *SectorWriter) WriteU8(v uint8) error {
	b := [1]byte{v}
	return sw.Write(b[:])
}

// WriteU16 writes v as little-endian.
func (sw *SectorWriter) WriteU16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return sw.Write(b[:])
}

// WriteI16 writes v as little-endian.
func (sw *SectorWriter) WriteI16(v int16) error {
	return sw.WriteU16(uint16(v))
}

// WriteU32 writes v as little-endian.
func (sw *SectorWriter) WriteU32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return sw.Write(b[:])
}

// WriteFixedString writes s zero-padded or truncated to exactly n bytes.
func (sw *SectorWriter) WriteFixedString(s string, n int) error {
	b := make([]byte, n)
	copy(b, s)
	return sw.Write(b)
}

// SectorReader is the read-side counterpart of SectorWriter.
type SectorReader struct {
	r   io.ReadSeeker
	pos int64
}

// NewSectorReader returns a SectorReader positioned at r's current offset.
func NewSectorReader(r io.ReadSeeker) (*SectorReader, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("querying reader offset: %w", err)
	}
	return &SectorReader{r: r, pos: pos}, nil
}

// Pos returns the current absolute read offset.
func (sr *SectorReader) Pos() int64 {
	return sr.pos
}

// Seek moves the cursor to the absolute offset pos.
func (sr *SectorReader) Seek(pos int64) error {
	if _, err := sr.r.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	sr.pos = pos
	return nil
}

// Read returns the next n bytes, failing on a short read.
func (sr *SectorReader) Read(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(sr.r, b); err != nil {
		return nil, err
	}
	sr.pos += int64(n)
	return b, nil
}

// Align skips forward to the next multiple of boundary. The skipped padding
// is not inspected.
func (sr *SectorReader) Align(boundary int64) error {
	next := alignUp(sr.pos, boundary)
	if next == sr.pos {
		return nil
	}
	return sr.Seek(next)
}

// ReadU8 reads a single byte.
func (sr *SectorReader) ReadU8() (uint8, error) {
	b, err := sr.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (sr *SectorReader) ReadU16() (uint16, error) {
	b, err := sr.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16 reads a little-endian int16.
func (sr *SectorReader) ReadI16() (int16, error) {
	v, err := sr.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32.
func (sr *SectorReader) ReadU32() (uint32, error) {
	b, err := sr.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFixedString reads n bytes and strips trailing zero padding.
func (sr *SectorReader) ReadFixedString(n int) (string, error) {
	b, err := sr.Read(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}
