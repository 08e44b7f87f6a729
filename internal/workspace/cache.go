package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"dubserve/internal/dub"
)

// Digest is a fixed 256-bit hash.
type Digest [32]byte

// Increment when pathPayload changes shape.
const cacheSchemaVersion uint16 = 1

// PathCache memoizes successful path recomputations on disk, keyed by the
// selector tuple and the manifest content digest. Strictly best-effort: a
// miss or IO failure just means the provider is asked again, and provider
// failures are never papered over with stale entries.
type PathCache struct {
	mu  sync.RWMutex
	dir string
}

type pathPayload struct {
	Schema            uint16
	ImportPaths       []string
	StringImportPaths []string
	SourceFiles       []string
}

// OpenPathCache initializes a disk cache under the standard user cache
// location.
func OpenPathCache(app string) (*PathCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &PathCache{dir: dir}, nil
}

// ManifestDigest hashes the project's recipe and selections files. Missing
// files hash as absent, so adding either later changes the key.
func ManifestDigest(root string) Digest {
	h := sha256.New()
	for _, name := range []string{"dub.json", "dub.selections.json"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			data = nil
		}
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func cacheKey(settings dub.Settings, manifest Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(manifest[:])
	for _, field := range []string{
		settings.Root,
		settings.Configuration,
		settings.ArchType,
		settings.BuildType,
		settings.Compiler,
	} {
		_, _ = h.Write([]byte(field))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *PathCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "paths", hex.EncodeToString(key[:])+".mp")
}

// Lookup returns the cached path sets for the settings/manifest pair.
func (c *PathCache) Lookup(settings dub.Settings, manifest Digest) (dub.PathSets, bool) {
	if c == nil {
		return dub.PathSets{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(cacheKey(settings, manifest)))
	if err != nil {
		return dub.PathSets{}, false
	}
	defer func() { _ = f.Close() }()

	var payload pathPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return dub.PathSets{}, false
	}
	if payload.Schema != cacheSchemaVersion {
		return dub.PathSets{}, false
	}
	return dub.PathSets{
		ImportPaths:       payload.ImportPaths,
		StringImportPaths: payload.StringImportPaths,
		SourceFiles:       payload.SourceFiles,
	}, true
}

// Store writes the path sets for the settings/manifest pair, atomically
// replacing any previous entry.
func (c *PathCache) Store(settings dub.Settings, manifest Digest, paths dub.PathSets) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.pathFor(cacheKey(settings, manifest))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(target), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	payload := pathPayload{
		Schema:            cacheSchemaVersion,
		ImportPaths:       paths.ImportPaths,
		StringImportPaths: paths.StringImportPaths,
		SourceFiles:       paths.SourceFiles,
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), target)
}

// DropAll removes every cached entry, useful after format changes.
func (c *PathCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.RemoveAll(filepath.Join(c.dir, "paths"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
