package dub

import "context"

// Settings selects what one dub invocation operates on.
type Settings struct {
	Root          string
	Configuration string
	ArchType      string
	BuildType     string
	Compiler      string
}

// flags renders the selector part of a dub command line.
func (s Settings) flags() []string {
	var args []string
	if s.Configuration != "" {
		args = append(args, "--config="+s.Configuration)
	}
	if s.ArchType != "" {
		args = append(args, "--arch="+s.ArchType)
	}
	if s.BuildType != "" {
		args = append(args, "--build="+s.BuildType)
	}
	if s.Compiler != "" {
		args = append(args, "--compiler="+s.Compiler)
	}
	return args
}

// PathSets are the derived lists downstream tooling needs to resolve source
// references. They are always produced together by one combined query.
type PathSets struct {
	ImportPaths       []string
	StringImportPaths []string
	SourceFiles       []string
}

// Empty reports whether no paths at all were derived.
func (p PathSets) Empty() bool {
	return len(p.ImportPaths) == 0 && len(p.StringImportPaths) == 0 && len(p.SourceFiles) == 0
}

// Compiler describes a resolved D compiler.
type Compiler struct {
	Name    string
	Path    string
	Version string
}

// LineSink receives one output line at a time, in emission order.
type LineSink func(line string)

// PathsProvider answers the combined check-only path query.
type PathsProvider interface {
	DescribePaths(ctx context.Context, settings Settings) (PathSets, error)
}

// CompilerResolver validates compiler names and supplies the tool default.
type CompilerResolver interface {
	ResolveCompiler(name string) (Compiler, error)
	DefaultCompiler() string
}

// Invoker performs a check-only compilation, streaming output into sink.
type Invoker interface {
	CheckBuild(ctx context.Context, settings Settings, sink LineSink) error
}
