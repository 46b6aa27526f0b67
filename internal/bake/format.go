package bake

import (
	"fmt"
	"strings"
)

// Compression is the payload compression of a bake file.
// NOTE: Should be no more than 8 (3 bits) of compression types.
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression accepts "none", "snappy" and "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return 0, fmt.Errorf("bake: unknown compression %q", s)
}

// Checksum is the integrity check applied to the stored payload.
// NOTE: Should be no more than 4 (2 bits) of checksum types.
type Checksum uint8

const (
	NoChecksum Checksum = iota
	CRC32
)

func (c Checksum) String() string {
	switch c {
	case NoChecksum:
		return "none"
	case CRC32:
		return "crc32"
	default:
		return fmt.Sprintf("Checksum(%d)", uint8(c))
	}
}

// Format is a single byte combining compression and checksum.
type Format uint8

func EncodeFormat(c Compression, sum Checksum) Format {
	a := (uint8(c) & 0x07) << 5
	b := (uint8(sum) & 0x03) << 3
	return Format(a | b)
}

func DecodeFormat(f Format) (Compression, Checksum) {
	return Compression(uint8(f) >> 5), Checksum((uint8(f) >> 3) & 0x03)
}
