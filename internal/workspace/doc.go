// Package workspace holds the per-project configuration state machine.
//
// A Workspace tracks the active configuration, arch type, build type and
// compiler selection, plus the three derived path sets (import paths,
// string-import paths, source files). Setters validate before committing and
// report invalid selections as a plain false. Every successful selector
// change triggers one combined path recomputation; on provider failure all
// three derived lists are cleared together, never left half-updated.
//
// Unlike the usual process-global registry for this kind of state, a
// Workspace is an explicit instance: one per loaded project, with an
// internal mutex serializing selector mutation against build-start
// snapshotting.
package workspace
