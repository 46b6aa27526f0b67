package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Header sizes of the client's texture wrappers.
const (
	ozjHeader = 24 // followed by JPEG data
	oztHeader = 4  // followed by TGA data
)

// LoadTexture reads an OZJ, OZT or plain JPEG/TGA/PNG file and returns an
// NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	// Decoders are picked by extension: TGA has no magic number to sniff.
	var imgData []byte
	var decode func(io.Reader) (image.Image, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ozj":
		if len(raw) <= ozjHeader {
			return nil, fmt.Errorf("texture: OZJ too short: %s", path)
		}
		imgData, decode = raw[ozjHeader:], jpeg.Decode
	case ".ozt":
		if len(raw) <= oztHeader {
			return nil, fmt.Errorf("texture: OZT too short: %s", path)
		}
		imgData, decode = raw[oztHeader:], tga.Decode
	case ".jpg", ".jpeg":
		imgData, decode = raw, jpeg.Decode
	case ".tga":
		imgData, decode = raw, tga.Decode
	case ".png":
		imgData, decode = raw, png.Decode
	default:
		return nil, fmt.Errorf("texture: unknown extension: %s", ext)
	}

	img, err := decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format, origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
