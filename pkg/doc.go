// Package pkg provides the core libraries for regroup.
//
// # Overview
//
// Regroup splits notated durations so that no note crosses a stronger beat
// boundary than the one it starts on. It builds a metrical hierarchy (nested
// levels of beat offsets within one measure) and breaks spans of time into
// fragments along it. The pkg directory is organized as:
//
//  1. [meter] - Offsets, time signatures and hierarchy construction
//  2. [regroup] - Span splitting against a hierarchy or flat pulse lengths
//  3. [pipeline] - Orchestration (build → split) with caching and batches
//  4. [cache] - Hierarchy cache backends (file, Redis, MongoDB)
//  5. [io] - JSON import/export of hierarchies, spans and results
//  6. [render/nodelink] - Graphviz diagrams of hierarchies
//
// # Architecture
//
// The typical data flow:
//
//	Time signature / pulse lengths / explicit offsets
//	         ↓
//	    [meter] package (build the hierarchy)
//	         ↓
//	    [regroup] package (split spans into fragments)
//	         ↓
//	    text, JSON, DOT or SVG output
//
// # Quick Start
//
// Split a quarter-note span in 6/8:
//
//	import (
//	    "github.com/matzehuels/regroup/pkg/meter"
//	    "github.com/matzehuels/regroup/pkg/regroup"
//	)
//
//	sig, _ := meter.ParseSignature("6/8")
//	h, _ := meter.FromSignature(sig, meter.DefaultMinimumPulse)
//	frags, _ := regroup.Split(h, meter.NewOffset(1, 2), meter.Whole(1), regroup.Options{})
//
// For repeated requests use [pipeline.Runner], which resolves options to a
// hierarchy once, caches it and splits batches concurrently.
//
// # Supporting Packages
//
// [errors] - Structured error codes shared by the library, CLI and HTTP API.
//
// [observability] - Hooks for build, split, cache and HTTP events.
//
// [buildinfo] - Version information injected at build time.
//
// [meter]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/meter
// [regroup]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/regroup
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/regroup/pkg/buildinfo
package pkg
