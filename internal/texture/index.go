package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// priority ranks texture files sharing a stem. BMD files name textures by
// their source format (".jpg", ".tga"); the client ships OZJ/OZT wrappers,
// and OZT carries alpha.
var priority = map[string]int{
	".ozt":  4,
	".ozj":  3,
	".tga":  2,
	".png":  1,
	".jpg":  1,
	".jpeg": 1,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex walks root and every subdirectory for texture files.
func BuildIndex(root string) *Index {
	idx := &Index{entries: make(map[string]string)}
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		idx.add(path)
		return nil
	})
	return idx
}

func (idx *Index) add(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := priority[ext]
	if !ok {
		return
	}
	stem := stemOf(path)
	if existing, exists := idx.entries[stem]; exists && priority[strings.ToLower(filepath.Ext(existing))] >= p {
		return
	}
	idx.entries[stem] = path
}

func stemOf(name string) string {
	// Strip path prefix (e.g., "Player\\texture\\skin_01.jpg" → "skin_01")
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
func (idx *Index) ResolvePath(texName string) (string, bool) {
	if idx == nil || texName == "" {
		return "", false
	}
	path, ok := idx.entries[stemOf(texName)]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}
