// Package pkg provides the core libraries of the roadmap engine.
//
// # Overview
//
// A roadmap is a graph of learning concepts joined by prerequisite and
// related edges. Learners collapse subtrees they are done with, lay the
// graph out in ranks and fit it into a viewport. The pkg directory is
// organized into four areas:
//
//  1. [roadmap] - Domain model, seed roadmap and the pure algorithms
//     ([layout], [visibility], [viewport])
//  2. [store] - The mutable roadmap with change notifications
//  3. [persist] and [storage] - Durable form and the backends that hold it
//  4. [api] and [render] - HTTP surface and diagram export
//
// # Architecture
//
// The typical data flow:
//
//	storage.Backend (file, redis, mongo, postgres)
//	         ↓
//	    [persist] package (durable JSON form, validation)
//	         ↓
//	    [store] package (mutations, visibility, notifications)
//	         ↓
//	    [layout] / [viewport] packages (ranked positions, fit transform)
//	         ↓
//	    CLI, TUI, HTTP API or DOT/SVG export
//
// # Quick Start
//
// Open a store backed by files and lay it out:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/roadmap/pkg/config"
//	    "github.com/matzehuels/roadmap/pkg/persist"
//	    "github.com/matzehuels/roadmap/pkg/roadmap/layout"
//	    "github.com/matzehuels/roadmap/pkg/storage"
//	    "github.com/matzehuels/roadmap/pkg/store"
//	)
//
//	cfg := config.Default()
//	backend, _ := storage.Open(ctx, cfg.Storage)
//	defer backend.Close()
//
//	st := store.New(ctx, store.Options{
//	    Persister: persist.NewAdapter(backend, cfg.Storage.Key, nil),
//	})
//	st.ToggleNodeCollapse("frontend")
//	st.ApplyLayout(layout.Options{})
//
// Every mutation of an unknown id is a no-op; nothing is persisted and no
// listener is notified.
//
// # Supporting Packages
//
//   - [config]: TOML/YAML settings with hot reload
//   - [errors]: Coded errors and input validation
//   - [observability]: Hooks for store and persistence events
//   - [buildinfo]: Version information
//
// [roadmap]: github.com/matzehuels/roadmap/pkg/roadmap
// [layout]: github.com/matzehuels/roadmap/pkg/roadmap/layout
// [visibility]: github.com/matzehuels/roadmap/pkg/roadmap/visibility
// [viewport]: github.com/matzehuels/roadmap/pkg/roadmap/viewport
// [store]: github.com/matzehuels/roadmap/pkg/store
// [persist]: github.com/matzehuels/roadmap/pkg/persist
// [storage]: github.com/matzehuels/roadmap/pkg/storage
// [api]: github.com/matzehuels/roadmap/pkg/api
// [render]: github.com/matzehuels/roadmap/pkg/render
// [config]: github.com/matzehuels/roadmap/pkg/config
// [errors]: github.com/matzehuels/roadmap/pkg/errors
// [observability]: github.com/matzehuels/roadmap/pkg/observability
// [buildinfo]: github.com/matzehuels/roadmap/pkg/buildinfo
package pkg
