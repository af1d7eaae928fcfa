// Package snapshot encodes a stream catalog into a compact binary form so a
// large catalog can be republished without reparsing text input.
//
// Only the raw segment records are stored; footprints and the broad-phase
// index are derived again on decode. Layout:
//
//	magic   [8]byte  "SFLXSNP1"
//	version uint8
//	comp    uint8    (Compression)
//	count   uint32   little-endian segment count
//	payload block-framed records, 48 bytes each:
//	        ax ay bx by rate halfWidth (float64 little-endian)
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ctessum/geom"
	"github.com/hupe1980/streamflux/catalog"
)

var magic = [8]byte{'S', 'F', 'L', 'X', 'S', 'N', 'P', '1'}

const (
	version    = 1
	recordSize = 6 * 8
	headerSize = len(magic) + 2 + 4
)

// ErrInvalidSnapshot is returned when the snapshot header or payload cannot
// be decoded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Write encodes the catalog's records to w.
func Write(w io.Writer, cat *catalog.Catalog, compression Compression) error {
	records := cat.Records()

	header := make([]byte, headerSize)
	copy(header, magic[:])
	header[len(magic)] = version
	header[len(magic)+1] = byte(compression)
	binary.LittleEndian.PutUint32(header[len(magic)+2:], uint32(len(records)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	payload := make([]byte, 0, len(records)*recordSize)
	var scratch [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		payload = append(payload, scratch[:]...)
	}
	for _, rec := range records {
		put(rec.A.X)
		put(rec.A.Y)
		put(rec.B.X)
		put(rec.B.Y)
		put(rec.Rate)
		put(rec.HalfWidth)
	}

	block, err := compressBlock(payload, compression)
	if err != nil {
		return fmt.Errorf("snapshot: compress payload: %w", err)
	}
	if _, err := w.Write(block); err != nil {
		return fmt.Errorf("snapshot: write payload: %w", err)
	}
	return nil
}

// Read decodes a snapshot and rebuilds the catalog, rederiving footprints
// with the given catalog options.
func Read(r io.Reader, optFns ...func(o *catalog.Options)) (*catalog.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	return Decode(data, optFns...)
}

// Decode rebuilds a catalog from snapshot bytes.
func Decode(data []byte, optFns ...func(o *catalog.Options)) (*catalog.Catalog, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: short header", ErrInvalidSnapshot)
	}
	if !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if data[len(magic)] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, data[len(magic)])
	}
	compression := Compression(data[len(magic)+1])
	count := binary.LittleEndian.Uint32(data[len(magic)+2:])

	payload, err := decompressBlock(data[headerSize:], compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if len(payload) != int(count)*recordSize {
		return nil, fmt.Errorf("%w: payload holds %d bytes, want %d records", ErrInvalidSnapshot, len(payload), count)
	}

	records := make([]catalog.Record, count)
	for i := range records {
		off := i * recordSize
		get := func(j int) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(payload[off+j*8:]))
		}
		records[i] = catalog.Record{
			A:         geom.Point{X: get(0), Y: get(1)},
			B:         geom.Point{X: get(2), Y: get(3)},
			Rate:      get(4),
			HalfWidth: get(5),
		}
	}

	return catalog.New(records, optFns...), nil
}
