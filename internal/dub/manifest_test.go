package dub

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeProject(t *testing.T, manifest, selections string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "dub.json"), []byte(manifest), 0o600); err != nil {
		t.Fatalf("writing dub.json: %v", err)
	}
	if selections != "" {
		if err := os.WriteFile(filepath.Join(root, "dub.selections.json"), []byte(selections), 0o600); err != nil {
			t.Fatalf("writing dub.selections.json: %v", err)
		}
	}
	return root
}

func TestReadManifest(t *testing.T) {
	root := writeProject(t, `{
		"name": "myapp",
		"configurations": [
			{"name": "application"},
			{"name": "library"},
			{"name": "unittest-config"}
		],
		"buildTypes": {
			"sanitize": {"buildOptions": ["debugMode"]},
			"bench": {"buildOptions": ["optimize"]}
		},
		"dependencies": {
			"vibe-d": "~>0.9.7",
			"mylib": {"path": "../mylib"},
			"taggedalgebraic": {"version": "~>0.11.22"}
		}
	}`, "")

	m, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Name != "myapp" {
		t.Fatalf("Name = %q, want myapp", m.Name)
	}
	wantConfigs := []string{"application", "library", "unittest-config"}
	if !reflect.DeepEqual(m.Configurations, wantConfigs) {
		t.Fatalf("Configurations = %v, want %v", m.Configurations, wantConfigs)
	}
	wantTypes := []string{"bench", "sanitize"}
	if !reflect.DeepEqual(m.BuildTypes, wantTypes) {
		t.Fatalf("BuildTypes = %v, want %v", m.BuildTypes, wantTypes)
	}
	if got := m.Dependencies["vibe-d"]; got != "~>0.9.7" {
		t.Fatalf("vibe-d constraint = %q", got)
	}
	if got := m.Dependencies["mylib"]; got != "path:../mylib" {
		t.Fatalf("mylib constraint = %q", got)
	}
	if got := m.Dependencies["taggedalgebraic"]; got != "~>0.11.22" {
		t.Fatalf("taggedalgebraic constraint = %q", got)
	}
	if !m.HasConfiguration("library") || m.HasConfiguration("nope") {
		t.Fatalf("HasConfiguration misreports membership")
	}
}

func TestReadManifestImplicitConfiguration(t *testing.T) {
	root := writeProject(t, `{"name": "bare"}`, "")
	m, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if !reflect.DeepEqual(m.Configurations, []string{"application"}) {
		t.Fatalf("Configurations = %v, want implicit application", m.Configurations)
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("err = %v, want ErrManifestNotFound", err)
	}
}

func TestDependencies(t *testing.T) {
	root := writeProject(t, `{
		"name": "myapp",
		"dependencies": {"b-lib": "~>1.0", "a-lib": "~>2.0"}
	}`, `{
		"fileVersion": 1,
		"versions": {
			"a-lib": "2.0.3",
			"b-lib": "1.0.1",
			"transitive": "0.5.0"
		}
	}`)

	m, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	selections, err := ReadSelections(root)
	if err != nil {
		t.Fatalf("ReadSelections: %v", err)
	}

	gotRoot := m.RootDependencies(selections)
	wantRoot := []Dependency{
		{Name: "a-lib", Version: "2.0.3"},
		{Name: "b-lib", Version: "1.0.1"},
	}
	if !reflect.DeepEqual(gotRoot, wantRoot) {
		t.Fatalf("RootDependencies = %v, want %v", gotRoot, wantRoot)
	}

	gotAll := RecursiveDependencies(selections)
	wantAll := []Dependency{
		{Name: "a-lib", Version: "2.0.3"},
		{Name: "b-lib", Version: "1.0.1"},
		{Name: "transitive", Version: "0.5.0"},
	}
	if !reflect.DeepEqual(gotAll, wantAll) {
		t.Fatalf("RecursiveDependencies = %v, want %v", gotAll, wantAll)
	}
}

func TestReadSelectionsMissingFile(t *testing.T) {
	selections, err := ReadSelections(t.TempDir())
	if err != nil {
		t.Fatalf("ReadSelections: %v", err)
	}
	if len(selections) != 0 {
		t.Fatalf("selections = %v, want empty", selections)
	}
}
