// Package buildctl orchestrates check-only builds.
//
// One Request starts one background build against a snapshot of the
// workspace's selectors, streams the engine's output lines into the
// diagnostic parser as they arrive, and delivers the final issue list (or a
// hard failure) on a buffered channel. The caller's goroutine never blocks
// on the build. There is no cancellation beyond the request context: a
// started build runs to completion or failure.
package buildctl

import (
	"context"
	"log"
	"os"
	"strings"

	"dubserve/internal/diag"
	"dubserve/internal/dub"
	"dubserve/internal/observ"
	"dubserve/internal/workspace"
)

// A build engine failure carrying this marker means the compiler ran and
// reported diagnostics; the non-zero exit is expected and swallowed.
const harmlessFailureMarker = "failed with exit code"

// Result is the outcome of one build request: either an issue list
// (possibly empty) or a hard failure. Never both.
type Result struct {
	Issues []diag.BuildIssue
	Err    error
}

// Requester runs check-only builds for one workspace.
type Requester struct {
	ws        *workspace.Workspace
	invoker   dub.Invoker
	maxIssues int
	log       *log.Logger
}

// New binds a requester to a workspace and a build engine invoker.
// maxIssues <= 0 keeps every parsed issue.
func New(ws *workspace.Workspace, invoker dub.Invoker, maxIssues int, logger *log.Logger) *Requester {
	if logger == nil {
		logger = log.New(os.Stderr, "buildctl: ", log.LstdFlags)
	}
	return &Requester{
		ws:        ws,
		invoker:   invoker,
		maxIssues: maxIssues,
		log:       logger,
	}
}

// Request validates the active configuration, snapshots the selectors, and
// starts one background build. The returned channel delivers exactly one
// Result. A precondition failure (invalid configuration) is returned
// immediately and no work starts.
func (r *Requester) Request(ctx context.Context) (<-chan Result, error) {
	settings, err := r.ws.CheckSettings()
	if err != nil {
		return nil, err
	}
	ch := make(chan Result, 1)
	go r.run(ctx, settings, ch)
	return ch, nil
}

func (r *Requester) run(ctx context.Context, settings dub.Settings, ch chan<- Result) {
	parser := diag.NewParser(r.maxIssues)
	timer := observ.NewTimer()
	phase := timer.Begin("check-build")
	err := r.invoker.CheckBuild(ctx, settings, parser.ConsumeLine)
	timer.End(phase, settings.BuildType)
	defer r.log.Print(timer.Summary())
	if err != nil {
		if !isHarmless(err) {
			ch <- Result{Err: err}
			return
		}
		r.log.Printf("check build finished with diagnostics: %v", err)
	}
	ch <- Result{Issues: parser.Issues()}
}

func isHarmless(err error) bool {
	return err != nil && strings.Contains(err.Error(), harmlessFailureMarker)
}
