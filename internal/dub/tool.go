package dub

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Compilers probed, in order, when no compiler is configured.
var defaultCompilers = []string{"dmd", "ldc2", "gdc"}

// Tool drives the dub binary. It implements PathsProvider, CompilerResolver
// and Invoker.
type Tool struct {
	bin string
	log *log.Logger
}

// NewTool locates the dub binary and returns a Tool bound to it.
// An empty bin falls back to "dub" on PATH.
func NewTool(bin string, logger *log.Logger) (*Tool, error) {
	if bin == "" {
		bin = "dub"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("dub binary %q not found: %w", bin, err)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "dub: ", log.LstdFlags)
	}
	return &Tool{bin: path, log: logger}, nil
}

// DescribePaths runs the combined check-only path query: one `dub describe`
// invocation requesting import paths, string-import paths and source files
// together, so the three lists are always derived from the same project
// model.
func (t *Tool) DescribePaths(ctx context.Context, settings Settings) (PathSets, error) {
	args := append([]string{
		"describe",
		"--data=import-paths,string-import-paths,source-files",
		"--data-list",
		"--skip-registry=all",
		"--vquiet",
	}, settings.flags()...)
	t.log.Printf("running %s %s", t.bin, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Dir = settings.Root
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(string(exitErr.Stderr))
			if msg != "" {
				return PathSets{}, fmt.Errorf("%s describe: %s", t.bin, msg)
			}
		}
		return PathSets{}, fmt.Errorf("%s describe: %w", t.bin, err)
	}

	groups := splitDataGroups(string(out), 3)
	return PathSets{
		ImportPaths:       groups[0],
		StringImportPaths: groups[1],
		SourceFiles:       groups[2],
	}, nil
}

// splitDataGroups parses `dub describe --data-list` output: each requested
// data item is a newline-delimited list, lists separated by a blank line.
// Always returns exactly n groups, padding with empty ones when the output
// is short.
func splitDataGroups(out string, n int) [][]string {
	groups := make([][]string, n)
	for i := range groups {
		groups[i] = []string{}
	}
	idx := 0
	for _, block := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n\n") {
		if idx >= n {
			break
		}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			groups[idx] = append(groups[idx], line)
		}
		idx++
	}
	return groups
}

// DefaultCompiler returns the first known D compiler present on PATH,
// falling back to dmd so the name is at least meaningful in errors.
func (t *Tool) DefaultCompiler() string {
	for _, name := range defaultCompilers {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return defaultCompilers[0]
}

// ResolveCompiler validates that name is an invocable compiler and probes
// its version. An empty name resolves the tool default.
func (t *Tool) ResolveCompiler(name string) (Compiler, error) {
	if name == "" {
		name = t.DefaultCompiler()
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return Compiler{}, fmt.Errorf("compiler %q not found: %w", name, err)
	}
	compiler := Compiler{Name: name, Path: path}
	if out, err := exec.Command(path, "--version").Output(); err == nil {
		if line, _, ok := strings.Cut(string(out), "\n"); ok {
			compiler.Version = strings.TrimSpace(line)
		} else {
			compiler.Version = strings.TrimSpace(string(out))
		}
	}
	return compiler, nil
}

// CheckBuild runs a no-artifact compilation and feeds every stdout/stderr
// line to sink in arrival order. A compiler that reported diagnostics makes
// dub exit non-zero; that case is returned as a "failed with exit code"
// error so the orchestrator can tell it apart from genuine invocation
// failures.
func (t *Tool) CheckBuild(ctx context.Context, settings Settings, sink LineSink) error {
	args := append([]string{
		"build",
		"--skip-registry=all",
		"--non-interactive",
	}, settings.flags()...)
	t.log.Printf("running %s %s", t.bin, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Dir = settings.Root
	// -o- keeps full semantic analysis but suppresses object/binary output.
	cmd.Env = append(os.Environ(), "DFLAGS=-o-")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s build: %w", t.bin, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%s build: %w", t.bin, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s build: %w", t.bin, err)
	}

	// Both pipes feed one sink; the mutex keeps lines whole. Within a pipe,
	// order is emission order, which is all the parser contract requires.
	var mu sync.Mutex
	capture := func(r io.Reader) func() error {
		return func() error {
			sc := bufio.NewScanner(r)
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for sc.Scan() {
				mu.Lock()
				sink(sc.Text())
				mu.Unlock()
			}
			return sc.Err()
		}
	}
	g, _ := errgroup.WithContext(ctx)
	g.Go(capture(stdout))
	g.Go(capture(stderr))
	captureErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s build failed with exit code %d", t.bin, exitErr.ExitCode())
		}
		return fmt.Errorf("%s build: %w", t.bin, err)
	}
	if captureErr != nil {
		return fmt.Errorf("capturing %s output: %w", t.bin, captureErr)
	}
	return nil
}
