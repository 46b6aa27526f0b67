// Package bake persists edge tables and rest-pose deltas so a mesh's
// topology does not have to be recomputed on every load.
package bake

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"

	"github.com/blang/semver"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"tension-tools/internal/edges"
)

// Magic starts every bake file.
const Magic = "TTBK"

// FormatVersion is written into every file. Readers accept any file whose
// major version matches.
var FormatVersion = semver.MustParse("1.0.0")

var (
	ErrMagic    = errors.New("bake: not a bake file")
	ErrVersion  = errors.New("bake: unsupported format version")
	ErrChecksum = errors.New("bake: checksum mismatch")
	ErrCorrupt  = errors.New("bake: corrupt payload")
)

// Baked is the persisted topology of one mesh.
type Baked struct {
	Hash   uint64 // content hash of the source mesh
	Table  *edges.Table
	Deltas []edges.Delta

	// Build holds the options of the build that produced the table. It is
	// not stored, so bakes read from the cache leave it zero.
	Build edges.Options
}

// Options controls encoding.
type Options struct {
	Compression Compression
	Checksum    Checksum
}

// DefaultOptions compresses with zstd and checks with CRC32.
var DefaultOptions = Options{Compression: Zstd, Checksum: CRC32}

// header: hash, vertex count, edge count
const headerSize = 8 + 4 + 4

var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) { return zstd.NewWriter(nil) })
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) { return zstd.NewReader(nil) })
)

// Encode serializes b. The raw edge table is written verbatim as
// little-endian int32 so it can be uploaded without repacking.
func Encode(b *Baked, opts Options) ([]byte, error) {
	if b.Table == nil {
		return nil, fmt.Errorf("bake: encode: nil table")
	}
	if len(b.Deltas) != b.Table.EdgeCount() {
		return nil, fmt.Errorf("bake: encode: %d deltas for %d edges", len(b.Deltas), b.Table.EdgeCount())
	}

	var payload bytes.Buffer
	payload.Grow(headerSize + 4*b.Table.Len() + 12*len(b.Deltas))
	for _, v := range []any{
		b.Hash,
		uint32(b.Table.VertexCount()),
		uint32(b.Table.EdgeCount()),
		b.Table.Raw(),
		b.Deltas,
	} {
		if err := binary.Write(&payload, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("bake: encode: %w", err)
		}
	}

	data, err := compress(payload.Bytes(), opts.Compression)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	ver := FormatVersion.String()
	out.WriteByte(byte(len(ver)))
	out.WriteString(ver)
	out.WriteByte(byte(EncodeFormat(opts.Compression, opts.Checksum)))
	switch opts.Checksum {
	case NoChecksum:
	case CRC32:
		binary.Write(&out, binary.LittleEndian, crc32.ChecksumIEEE(data))
	default:
		return nil, fmt.Errorf("bake: encode: illegal checksum %s", opts.Checksum)
	}
	out.Write(data)
	return out.Bytes(), nil
}

// Header is the fixed prefix of a bake file.
type Header struct {
	Version     semver.Version
	Compression Compression
	Checksum    Checksum
}

// ReadHeader parses and version-checks the prefix of a bake file.
func ReadHeader(raw []byte) (Header, error) {
	return readHeader(bytes.NewBuffer(raw))
}

func readHeader(buf *bytes.Buffer) (Header, error) {
	if m := buf.Next(len(Magic)); string(m) != Magic {
		return Header{}, ErrMagic
	}
	n, err := buf.ReadByte()
	if err != nil || buf.Len() < int(n) {
		return Header{}, ErrCorrupt
	}
	ver, err := semver.Parse(string(buf.Next(int(n))))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrVersion, err)
	}
	if ver.Major != FormatVersion.Major {
		return Header{}, fmt.Errorf("%w: %s (reader is %s)", ErrVersion, ver, FormatVersion)
	}

	f, err := buf.ReadByte()
	if err != nil {
		return Header{}, ErrCorrupt
	}
	comp, sum := DecodeFormat(Format(f))
	return Header{Version: ver, Compression: comp, Checksum: sum}, nil
}

// Decode parses a bake file and validates the edge table it carries.
func Decode(raw []byte) (*Baked, error) {
	buf := bytes.NewBuffer(raw)
	h, err := readHeader(buf)
	if err != nil {
		return nil, err
	}
	switch h.Checksum {
	case NoChecksum:
	case CRC32:
		var stored uint32
		if err := binary.Read(buf, binary.LittleEndian, &stored); err != nil {
			return nil, ErrCorrupt
		}
		if got := crc32.ChecksumIEEE(buf.Bytes()); got != stored {
			return nil, fmt.Errorf("%w: stored %x got %x", ErrChecksum, stored, got)
		}
	default:
		return nil, fmt.Errorf("%w: illegal checksum %s", ErrCorrupt, h.Checksum)
	}

	payload, err := decompress(buf.Bytes(), h.Compression)
	if err != nil {
		return nil, err
	}
	return decodePayload(payload)
}

func decodePayload(p []byte) (*Baked, error) {
	if len(p) < headerSize {
		return nil, ErrCorrupt
	}
	b := &Baked{Hash: binary.LittleEndian.Uint64(p[0:8])}
	vc := int(binary.LittleEndian.Uint32(p[8:12]))
	ec := int(binary.LittleEndian.Uint32(p[12:16]))

	// Sizes are checked before allocating anything they describe.
	want := uint64(headerSize) + 4*(uint64(vc)+uint64(ec)) + 12*uint64(ec)
	if uint64(len(p)) != want {
		return nil, fmt.Errorf("%w: payload is %d bytes, header describes %d", ErrCorrupt, len(p), want)
	}

	r := bytes.NewReader(p[headerSize:])
	raw := make([]int32, vc+ec)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	b.Deltas = make([]edges.Delta, ec)
	if err := binary.Read(r, binary.LittleEndian, b.Deltas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	t, err := edges.FromRaw(vc, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	b.Table = t
	return b, nil
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case Uncompressed:
		return data, nil
	case Snappy:
		return snappy.Encode(nil, data), nil
	case Zstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("bake: zstd: %w", err)
		}
		return enc.EncodeAll(data, nil), nil
	}
	return nil, fmt.Errorf("bake: illegal compression %s", c)
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case Uncompressed:
		return data, nil
	case Snappy:
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("%w: snappy: %v", ErrCorrupt, err)
		}
		return out, nil
	case Zstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("bake: zstd: %w", err)
		}
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: illegal compression %s", ErrCorrupt, c)
}

// WriteFile encodes b and writes it atomically to path.
func WriteFile(path string, b *Baked, opts Options) error {
	data, err := Encode(b, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("bake: mkdir: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes to a temporary sibling then renames over path, so
// readers never observe a partial bake.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bake-*")
	if err != nil {
		return fmt.Errorf("bake: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("bake: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("bake: %w", err)
	}
	return nil
}

// ReadFile reads and decodes a bake file.
func ReadFile(path string) (*Baked, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bake: read: %w", err)
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
