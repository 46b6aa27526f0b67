package bake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/coocood/freecache"
	"golang.org/x/sync/singleflight"
)

// Ext is the file extension of bake files on disk.
const Ext = ".ttb"

// Mode decides whether a matching stored bake may be reused.
type Mode int

const (
	// ModeBaked reuses a stored bake whose mesh hash matches.
	ModeBaked Mode = iota
	// ModeOnAwake always rebuilds and refreshes the stored copy.
	ModeOnAwake
)

func (m Mode) String() string {
	switch m {
	case ModeBaked:
		return "baked"
	case ModeOnAwake:
		return "on_awake"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "baked" and "on_awake".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "baked", "":
		return ModeBaked, nil
	case "on_awake", "onawake", "awake":
		return ModeOnAwake, nil
	}
	return 0, fmt.Errorf("bake: unknown mode %q", s)
}

// Source tells where a Load result came from.
type Source int

const (
	FromBuild Source = iota
	FromMemory
	FromDisk
)

func (s Source) String() string {
	switch s {
	case FromMemory:
		return "memory"
	case FromDisk:
		return "disk"
	default:
		return "build"
	}
}

// Stats counts cache lookups.
type Stats struct {
	MemoryHits int64
	DiskHits   int64
	Misses     int64
	Stale      int64
}

// Cache stores encoded bakes in memory (freecache) backed by one file per
// mesh hash in a directory. Safe for concurrent use.
type Cache struct {
	dir  string
	mem  *freecache.Cache
	opts Options
	log  *slog.Logger

	group singleflight.Group

	memHits, diskHits, misses, stale atomic.Int64
}

// NewCache creates the directory if needed. memBytes <= 0 disables the
// memory tier. A nil logger discards cache diagnostics.
func NewCache(dir string, memBytes int, opts Options, log *slog.Logger) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("bake: cache directory required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("bake: cache dir: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Cache{dir: dir, opts: opts, log: log}
	if memBytes > 0 {
		c.mem = freecache.NewCache(memBytes)
	}
	return c, nil
}

// Path returns the on-disk location of the bake for hash.
func (c *Cache) Path(hash uint64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x%s", hash, Ext))
}

func memKey(hash uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, hash)
}

// Get looks up a bake by mesh hash, memory first. A stored bake whose
// embedded hash differs from the key is treated as stale and ignored.
func (c *Cache) Get(hash uint64) (*Baked, Source, bool) {
	if c.mem != nil {
		if blob, err := c.mem.Get(memKey(hash)); err == nil {
			if b, err := Decode(blob); err == nil && b.Hash == hash {
				c.memHits.Add(1)
				return b, FromMemory, true
			}
			c.mem.Del(memKey(hash))
		} else if err != freecache.ErrNotFound {
			c.log.Warn("bake cache memory lookup", "hash", hash, "err", err)
		}
	}

	data, err := os.ReadFile(c.Path(hash))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("bake cache read", "path", c.Path(hash), "err", err)
		}
		c.misses.Add(1)
		return nil, FromBuild, false
	}
	b, err := Decode(data)
	if err != nil || b.Hash != hash {
		c.log.Info("ignoring stale bake", "path", c.Path(hash), "err", err)
		c.stale.Add(1)
		c.misses.Add(1)
		return nil, FromBuild, false
	}
	c.remember(hash, data)
	c.diskHits.Add(1)
	return b, FromDisk, true
}

// Put encodes b and stores it in both tiers. Returns the file path.
func (c *Cache) Put(b *Baked) (string, error) {
	data, err := Encode(b, c.opts)
	if err != nil {
		return "", err
	}
	path := c.Path(b.Hash)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	c.remember(b.Hash, data)
	return path, nil
}

func (c *Cache) remember(hash uint64, data []byte) {
	if c.mem == nil {
		return
	}
	// freecache rejects entries larger than 1/1024 of its size; those bakes
	// are served from disk only.
	if err := c.mem.Set(memKey(hash), data, 0); err != nil && !errors.Is(err, freecache.ErrLargeEntry) {
		c.log.Warn("bake cache memory store", "hash", hash, "err", err)
	}
}

// Load returns the bake for hash, building it with build when the mode
// or a cache miss requires it. Concurrent loads of the same hash share a
// single lookup or build.
func (c *Cache) Load(hash uint64, mode Mode, build func() (*Baked, error)) (*Baked, Source, error) {
	type result struct {
		b   *Baked
		src Source
	}
	key := strconv.FormatUint(hash, 16) + "/" + mode.String()
	v, err, _ := c.group.Do(key, func() (any, error) {
		if mode == ModeBaked {
			if b, src, ok := c.Get(hash); ok {
				return result{b, src}, nil
			}
		}
		b, err := build()
		if err != nil {
			return nil, err
		}
		if b.Hash != hash {
			return nil, fmt.Errorf("bake: build returned hash %016x, want %016x", b.Hash, hash)
		}
		if _, err := c.Put(b); err != nil {
			return nil, err
		}
		return result{b, FromBuild}, nil
	})
	if err != nil {
		return nil, FromBuild, err
	}
	r := v.(result)
	return r.b, r.src, nil
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{
		MemoryHits: c.memHits.Load(),
		DiskHits:   c.diskHits.Load(),
		Misses:     c.misses.Load(),
		Stale:      c.stale.Load(),
	}
}
