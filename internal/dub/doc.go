// Package dub is the boundary to the external dub build tool.
//
// It declares the three collaborator contracts the rest of the repo depends
// on (PathsProvider, CompilerResolver, Invoker) and ships Tool, the exec
// based implementation that drives the dub binary. Manifest and selections
// readers for dub.json / dub.selections.json also live here.
//
// Callers never see raw exec failures: Tool wraps every invocation error
// with the command that produced it. A compilation that merely reported
// diagnostics surfaces as a "failed with exit code" error, which the build
// orchestrator treats as harmless.
package dub
