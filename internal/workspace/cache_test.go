package workspace

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dubserve/internal/dub"
)

func newTestCache(t *testing.T) *PathCache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenPathCache("dubserve-test")
	if err != nil {
		t.Fatalf("OpenPathCache: %v", err)
	}
	return cache
}

func TestPathCacheRoundtrip(t *testing.T) {
	cache := newTestCache(t)
	settings := dub.Settings{
		Root:          "/proj",
		Configuration: "application",
		ArchType:      "x86_64",
		BuildType:     "debug",
		Compiler:      "dmd",
	}
	manifest := Digest{1, 2, 3}
	paths := dub.PathSets{
		ImportPaths:       []string{"source"},
		StringImportPaths: []string{"views"},
		SourceFiles:       []string{"source/app.d"},
	}

	if _, ok := cache.Lookup(settings, manifest); ok {
		t.Fatalf("Lookup hit on empty cache")
	}
	if err := cache.Store(settings, manifest, paths); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok := cache.Lookup(settings, manifest)
	if !ok {
		t.Fatalf("Lookup miss after Store")
	}
	if !reflect.DeepEqual(got, paths) {
		t.Fatalf("Lookup = %+v, want %+v", got, paths)
	}
}

func TestPathCacheKeyIsSelectorSensitive(t *testing.T) {
	cache := newTestCache(t)
	settings := dub.Settings{Root: "/proj", Configuration: "application", BuildType: "debug"}
	manifest := Digest{9}
	if err := cache.Store(settings, manifest, dub.PathSets{ImportPaths: []string{"a"}}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	other := settings
	other.BuildType = "release"
	if _, ok := cache.Lookup(other, manifest); ok {
		t.Fatalf("Lookup hit across differing build types")
	}
	if _, ok := cache.Lookup(settings, Digest{10}); ok {
		t.Fatalf("Lookup hit across differing manifest digests")
	}
}

func TestPathCacheDropAll(t *testing.T) {
	cache := newTestCache(t)
	settings := dub.Settings{Root: "/proj"}
	manifest := Digest{5}
	if err := cache.Store(settings, manifest, dub.PathSets{ImportPaths: []string{"a"}}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok := cache.Lookup(settings, manifest); ok {
		t.Fatalf("Lookup hit after DropAll")
	}
}

func TestManifestDigestTracksContent(t *testing.T) {
	root := t.TempDir()
	before := ManifestDigest(root)
	if err := os.WriteFile(filepath.Join(root, "dub.json"), []byte(`{"name":"a"}`), 0o600); err != nil {
		t.Fatalf("writing dub.json: %v", err)
	}
	after := ManifestDigest(root)
	if before == after {
		t.Fatalf("digest unchanged by manifest write")
	}
	if after != ManifestDigest(root) {
		t.Fatalf("digest not stable for identical content")
	}
}

func TestLoadToolConfig(t *testing.T) {
	root := t.TempDir()
	cfg, found, err := LoadToolConfig(root)
	if err != nil || found {
		t.Fatalf("LoadToolConfig on empty dir = (%+v, %v, %v)", cfg, found, err)
	}
	if !cfg.Cache {
		t.Fatalf("Cache default = false, want true")
	}

	content := "dub = \"/opt/dub/bin/dub\"\ncompiler = \"ldc2\"\ncache = false\n"
	if err := os.WriteFile(filepath.Join(root, "dubserve.toml"), []byte(content), 0o600); err != nil {
		t.Fatalf("writing dubserve.toml: %v", err)
	}
	cfg, found, err = LoadToolConfig(root)
	if err != nil {
		t.Fatalf("LoadToolConfig: %v", err)
	}
	if !found {
		t.Fatalf("config file not reported as found")
	}
	if cfg.Dub != "/opt/dub/bin/dub" || cfg.Compiler != "ldc2" || cfg.Cache {
		t.Fatalf("config = %+v", cfg)
	}
}
