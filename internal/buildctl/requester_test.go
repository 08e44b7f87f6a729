package buildctl

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dubserve/internal/diag"
	"dubserve/internal/dub"
	"dubserve/internal/workspace"
)

type fakeInvoker struct {
	lines []string
	err   error
	calls int
}

func (f *fakeInvoker) CheckBuild(_ context.Context, _ dub.Settings, sink dub.LineSink) error {
	f.calls++
	for _, line := range f.lines {
		sink(line)
	}
	return f.err
}

type stubProvider struct{}

func (stubProvider) DescribePaths(context.Context, dub.Settings) (dub.PathSets, error) {
	return dub.PathSets{ImportPaths: []string{"source"}}, nil
}

type stubResolver struct{}

func (stubResolver) ResolveCompiler(name string) (dub.Compiler, error) {
	return dub.Compiler{Name: name}, nil
}

func (stubResolver) DefaultCompiler() string { return "dmd" }

func newTestWorkspace(t *testing.T, manifest string) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "dub.json"), []byte(manifest), 0o600); err != nil {
		t.Fatalf("writing dub.json: %v", err)
	}
	ws, err := workspace.New(context.Background(), root, stubProvider{}, stubResolver{}, workspace.Options{
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	return ws, root
}

func await(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("build result never delivered")
		return Result{}
	}
}

func TestRequestCollectsIssuesDespiteHarmlessFailure(t *testing.T) {
	ws, _ := newTestWorkspace(t, `{"name": "app"}`)
	invoker := &fakeInvoker{
		lines: []string{
			"Performing \"debug\" build using dmd for x86_64.",
			"source/app.d(12,3): Error: undefined identifier x",
			"source/app.d(20): Warning: unreachable code",
		},
		err: errors.New("dmd failed with exit code 1"),
	}
	r := New(ws, invoker, 0, log.New(io.Discard, "", 0))

	ch, err := r.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	res := await(t, ch)
	if res.Err != nil {
		t.Fatalf("harmless failure propagated: %v", res.Err)
	}
	if len(res.Issues) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(res.Issues), res.Issues)
	}
	if res.Issues[0].Severity != diag.SevError || res.Issues[1].Severity != diag.SevWarning {
		t.Fatalf("issue order not preserved: %+v", res.Issues)
	}
}

func TestRequestSucceedsWithNoIssues(t *testing.T) {
	ws, _ := newTestWorkspace(t, `{"name": "app"}`)
	invoker := &fakeInvoker{err: errors.New("build failed with exit code 2")}
	r := New(ws, invoker, 0, log.New(io.Discard, "", 0))

	ch, err := r.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	res := await(t, ch)
	if res.Err != nil {
		t.Fatalf("harmless failure propagated: %v", res.Err)
	}
	if len(res.Issues) != 0 {
		t.Fatalf("got issues from empty output: %+v", res.Issues)
	}
}

func TestRequestPropagatesHardFailures(t *testing.T) {
	ws, _ := newTestWorkspace(t, `{"name": "app"}`)
	invoker := &fakeInvoker{
		lines: []string{"source/app.d(1): Error: partial"},
		err:   errors.New("dub binary vanished mid-build"),
	}
	r := New(ws, invoker, 0, log.New(io.Discard, "", 0))

	ch, err := r.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	res := await(t, ch)
	if res.Err == nil {
		t.Fatalf("hard failure swallowed")
	}
	if len(res.Issues) != 0 {
		t.Fatalf("partial issues delivered alongside failure: %+v", res.Issues)
	}
}

func TestRequestFailsFastOnInvalidConfiguration(t *testing.T) {
	ws, root := newTestWorkspace(t, `{"name": "app", "configurations": [{"name": "application"}]}`)

	changed := `{"name": "app", "configurations": [{"name": "renamed"}]}`
	if err := os.WriteFile(filepath.Join(root, "dub.json"), []byte(changed), 0o600); err != nil {
		t.Fatalf("rewriting dub.json: %v", err)
	}
	if _, err := ws.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	invoker := &fakeInvoker{}
	r := New(ws, invoker, 0, log.New(io.Discard, "", 0))
	if _, err := r.Request(context.Background()); !errors.Is(err, workspace.ErrInvalidConfiguration) {
		t.Fatalf("Request = %v, want ErrInvalidConfiguration", err)
	}
	if invoker.calls != 0 {
		t.Fatalf("build started despite failed precondition")
	}
}

func TestRequestHonoursIssueLimit(t *testing.T) {
	ws, _ := newTestWorkspace(t, `{"name": "app"}`)
	invoker := &fakeInvoker{
		lines: []string{
			"a.d(1): Error: one",
			"a.d(2): Error: two",
			"a.d(3): Error: three",
		},
		err: errors.New("build failed with exit code 1"),
	}
	r := New(ws, invoker, 2, log.New(io.Discard, "", 0))

	ch, err := r.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	res := await(t, ch)
	if len(res.Issues) != 2 {
		t.Fatalf("got %d issues, want limit of 2", len(res.Issues))
	}
}
