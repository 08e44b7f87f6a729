package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"dubserve/internal/dub"
	"dubserve/internal/observ"
)

// ErrInvalidConfiguration indicates that the active configuration is not a
// member of the project's declared configuration set. Operations that depend
// on a valid configuration fail fast with this instead of working on stale
// derived state.
var ErrInvalidConfiguration = errors.New("active configuration is not declared by the project")

// DefaultArchType is assumed until a caller selects otherwise.
const DefaultArchType = "x86_64"

// DefaultBuildType is assumed until a caller selects otherwise.
const DefaultBuildType = "debug"

// Options tunes workspace construction.
type Options struct {
	// Compiler overrides the resolver's default compiler selection.
	Compiler string
	// Cache, when set, memoizes successful path recomputations on disk.
	Cache *PathCache
	// Logger receives recomputation failures. Defaults to stderr.
	Logger *log.Logger
}

// Workspace is the configuration state for one loaded dub project.
type Workspace struct {
	mu       sync.Mutex
	root     string
	provider dub.PathsProvider
	resolver dub.CompilerResolver
	cache    *PathCache
	log      *log.Logger

	manifest       dub.Manifest
	selections     map[string]string
	manifestDigest Digest

	configuration string
	archType      string
	buildType     string
	compiler      string

	importPaths       []string
	stringImportPaths []string
	sourceFiles       []string
}

// New loads the project at root and returns its workspace with defaults
// applied: the first declared configuration, x86_64, debug, and the
// resolver's default compiler. The initial path recomputation runs
// immediately; its failure is not fatal (the workspace starts with empty
// derived lists, same as any later recomputation failure).
func New(ctx context.Context, root string, provider dub.PathsProvider, resolver dub.CompilerResolver, opts Options) (*Workspace, error) {
	manifest, err := dub.ReadManifest(root)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "workspace: ", log.LstdFlags)
	}
	compiler := opts.Compiler
	if compiler == "" {
		compiler = resolver.DefaultCompiler()
	}
	w := &Workspace{
		root:          root,
		provider:      provider,
		resolver:      resolver,
		cache:         opts.Cache,
		log:           logger,
		manifest:      manifest,
		configuration: manifest.Configurations[0],
		archType:      DefaultArchType,
		buildType:     DefaultBuildType,
		compiler:      compiler,
	}
	w.loadSelectionsLocked()
	w.manifestDigest = ManifestDigest(root)
	w.recomputePathsLocked(ctx)
	return w, nil
}

// Reload re-reads the project manifest and selections, keeps the current
// selector values, and recomputes the derived path sets. The active
// configuration may become undeclared by the reload; that state is reported
// by ValidateConfiguration, not masked here. Returns whether the recomputed
// import-path set is non-empty.
func (w *Workspace) Reload(ctx context.Context) (bool, error) {
	manifest, err := dub.ReadManifest(w.root)
	if err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manifest = manifest
	w.loadSelectionsLocked()
	w.manifestDigest = ManifestDigest(w.root)
	return w.recomputePathsLocked(ctx), nil
}

func (w *Workspace) loadSelectionsLocked() {
	selections, err := dub.ReadSelections(w.root)
	if err != nil {
		w.log.Printf("reading selections: %v", err)
		selections = map[string]string{}
	}
	w.selections = selections
}

// SetConfiguration selects a declared configuration. An undeclared name is
// rejected with false and leaves all state untouched. On success the path
// sets are recomputed; the return value reports whether any of the three
// came back non-empty.
func (w *Workspace) SetConfiguration(ctx context.Context, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.manifest.HasConfiguration(name) {
		return false
	}
	w.configuration = name
	return w.recomputePathsLocked(ctx)
}

// SetArchType selects a target architecture from the enumerable set.
func (w *Workspace) SetArchType(ctx context.Context, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !contains(archTypes, name) {
		return false
	}
	w.archType = name
	return w.recomputePathsLocked(ctx)
}

// SetBuildType selects a built-in or project-declared build type.
func (w *Workspace) SetBuildType(ctx context.Context, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !contains(builtinBuildTypes, name) && !contains(w.manifest.BuildTypes, name) {
		return false
	}
	w.buildType = name
	return w.recomputePathsLocked(ctx)
}

// SetCompiler selects a compiler. Validity is checked by resolving the name
// to an actual compiler; any resolution failure is reported as false rather
// than propagated.
func (w *Workspace) SetCompiler(ctx context.Context, name string) bool {
	if _, err := w.resolver.ResolveCompiler(name); err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.compiler = name
	return w.recomputePathsLocked(ctx)
}

// recomputePathsLocked replaces the three derived lists from one combined
// provider query. Provider failure clears all three and returns false; the
// caller treats "no paths" as a legitimate terminal state, not an error.
func (w *Workspace) recomputePathsLocked(ctx context.Context) bool {
	settings := w.settingsLocked()
	if w.cache != nil {
		if paths, ok := w.cache.Lookup(settings, w.manifestDigest); ok {
			w.applyPathsLocked(paths)
			return !paths.Empty()
		}
	}
	timer := observ.NewTimer()
	phase := timer.Begin("describe")
	paths, err := w.provider.DescribePaths(ctx, settings)
	timer.End(phase, settings.Configuration)
	w.log.Print(timer.Summary())
	if err != nil {
		w.importPaths = nil
		w.stringImportPaths = nil
		w.sourceFiles = nil
		w.log.Printf("path recomputation failed: %v", err)
		return false
	}
	w.applyPathsLocked(paths)
	if w.cache != nil && !paths.Empty() {
		if err := w.cache.Store(settings, w.manifestDigest, paths); err != nil {
			w.log.Printf("caching paths: %v", err)
		}
	}
	return !paths.Empty()
}

func (w *Workspace) applyPathsLocked(paths dub.PathSets) {
	w.importPaths = paths.ImportPaths
	w.stringImportPaths = paths.StringImportPaths
	w.sourceFiles = paths.SourceFiles
}

func (w *Workspace) settingsLocked() dub.Settings {
	return dub.Settings{
		Root:          w.root,
		Configuration: w.configuration,
		ArchType:      w.archType,
		BuildType:     w.buildType,
		Compiler:      w.compiler,
	}
}

// ValidateConfiguration fails when the active configuration is not declared
// by the (possibly reloaded) project. Used as a precondition guard by path
// listing, dependency listing and build requests.
func (w *Workspace) ValidateConfiguration() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.manifest.HasConfiguration(w.configuration) {
		return fmt.Errorf("%w: %q", ErrInvalidConfiguration, w.configuration)
	}
	return nil
}

// CheckSettings validates the configuration and snapshots the current
// selectors for one build invocation. The snapshot decouples an in-flight
// build from concurrent selector changes.
func (w *Workspace) CheckSettings() (dub.Settings, error) {
	if err := w.ValidateConfiguration(); err != nil {
		return dub.Settings{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settingsLocked(), nil
}

// Root returns the project root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Name returns the package name from the manifest.
func (w *Workspace) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.manifest.Name
}

// Configuration returns the active configuration name.
func (w *Workspace) Configuration() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.configuration
}

// ArchType returns the active target architecture.
func (w *Workspace) ArchType() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.archType
}

// BuildType returns the active build type.
func (w *Workspace) BuildType() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buildType
}

// Compiler returns the active compiler name.
func (w *Workspace) Compiler() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.compiler
}

// ImportPaths returns a copy of the derived import-path list.
func (w *Workspace) ImportPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.importPaths...)
}

// StringImportPaths returns a copy of the derived string-import-path list.
func (w *Workspace) StringImportPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.stringImportPaths...)
}

// SourceFiles returns a copy of the derived source-file list.
func (w *Workspace) SourceFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.sourceFiles...)
}

// Configurations lists the project's declared configurations.
func (w *Workspace) Configurations() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.manifest.Configurations...)
}

// BuildTypes lists the built-in build types unioned with project-declared
// custom ones.
func (w *Workspace) BuildTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := append([]string(nil), builtinBuildTypes...)
	for _, custom := range w.manifest.BuildTypes {
		if !contains(types, custom) {
			types = append(types, custom)
		}
	}
	return types
}

// ArchTypes lists the accepted target architectures.
func (w *Workspace) ArchTypes() []string {
	return append([]string(nil), archTypes...)
}

// Dependencies lists the project's packages: the full pinned closure when
// recursive, otherwise the manifest's direct dependencies. Requires a valid
// active configuration.
func (w *Workspace) Dependencies(recursive bool) ([]dub.Dependency, error) {
	if err := w.ValidateConfiguration(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if recursive {
		return dub.RecursiveDependencies(w.selections), nil
	}
	return w.manifest.RootDependencies(w.selections), nil
}
