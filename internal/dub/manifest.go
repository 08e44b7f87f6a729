package dub

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrManifestNotFound indicates that no dub.json exists at the project root.
var ErrManifestNotFound = errors.New("no dub.json found")

// Manifest is the subset of a dub package recipe the workspace needs.
type Manifest struct {
	Name           string
	Configurations []string
	BuildTypes     []string
	Dependencies   map[string]string
}

// Dependency is one resolved or declared package dependency.
type Dependency struct {
	Name    string
	Version string
}

type rawManifest struct {
	Name           string                     `json:"name"`
	Configurations []rawConfiguration         `json:"configurations"`
	BuildTypes     map[string]json.RawMessage `json:"buildTypes"`
	Dependencies   map[string]json.RawMessage `json:"dependencies"`
}

type rawConfiguration struct {
	Name string `json:"name"`
}

// ReadManifest loads the dub.json recipe at root.
func ReadManifest(root string) (Manifest, error) {
	path := filepath.Join(root, "dub.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, fmt.Errorf("%s: %w", root, ErrManifestNotFound)
		}
		return Manifest{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}

	m := Manifest{Name: strings.TrimSpace(raw.Name)}
	for _, cfg := range raw.Configurations {
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			continue
		}
		m.Configurations = append(m.Configurations, name)
	}
	if len(m.Configurations) == 0 {
		// dub synthesizes an implicit configuration when the recipe declares
		// none; keep the membership invariant workable by naming it.
		m.Configurations = []string{"application"}
	}

	for name := range raw.BuildTypes {
		m.BuildTypes = append(m.BuildTypes, name)
	}
	sort.Strings(m.BuildTypes)

	m.Dependencies = make(map[string]string, len(raw.Dependencies))
	for name, value := range raw.Dependencies {
		m.Dependencies[name] = decodeDependencyVersion(value)
	}
	return m, nil
}

// HasConfiguration reports whether name is a declared configuration.
func (m Manifest) HasConfiguration(name string) bool {
	for _, cfg := range m.Configurations {
		if cfg == name {
			return true
		}
	}
	return false
}

// Dependency entries are either a bare version string or an object with
// "version" or "path" keys. Anything unrecognised degrades to "*".
func decodeDependencyVersion(value json.RawMessage) string {
	var version string
	if err := json.Unmarshal(value, &version); err == nil {
		return version
	}
	var obj struct {
		Version string `json:"version"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(value, &obj); err == nil {
		if obj.Version != "" {
			return obj.Version
		}
		if obj.Path != "" {
			return "path:" + obj.Path
		}
	}
	return "*"
}

type rawSelections struct {
	FileVersion int                        `json:"fileVersion"`
	Versions    map[string]json.RawMessage `json:"versions"`
}

// ReadSelections loads pinned dependency versions from dub.selections.json.
// A missing selections file is not an error; it yields an empty map.
func ReadSelections(root string) (map[string]string, error) {
	path := filepath.Join(root, "dub.selections.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var raw rawSelections
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}
	selections := make(map[string]string, len(raw.Versions))
	for name, value := range raw.Versions {
		selections[name] = decodeDependencyVersion(value)
	}
	return selections, nil
}

// RootDependencies lists the manifest's direct dependencies, pinned to the
// selected version where one exists.
func (m Manifest) RootDependencies(selections map[string]string) []Dependency {
	deps := make([]Dependency, 0, len(m.Dependencies))
	for name, constraint := range m.Dependencies {
		version := constraint
		if pinned, ok := selections[name]; ok {
			version = pinned
		}
		deps = append(deps, Dependency{Name: name, Version: version})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

// RecursiveDependencies lists the full pinned closure from the selections
// file. dub.selections.json already covers transitive dependencies, so no
// graph walk is needed here.
func RecursiveDependencies(selections map[string]string) []Dependency {
	deps := make([]Dependency, 0, len(selections))
	for name, version := range selections {
		deps = append(deps, Dependency{Name: name, Version: version})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}
