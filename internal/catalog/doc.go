// Package catalog provides SQLite-based persistence for pack build history.
//
// Every successful build can be recorded with its parameters, the per-note
// index rows as built, every emitted part container, and the ordered
// diagnostic messages. The catalog backs `notepack history`, which answers
// "what did the last build produce and warn about" without re-running it.
//
// Tables:
//   - builds: build parameters and result counts
//   - notes: per-note index rows plus source path and content hash
//   - parts: every emitted part container (global id, name, size)
//   - diagnostics: ordered non-fatal warnings
//
// Two driver configurations exist behind build tags: the default pure Go
// modernc.org/sqlite driver, and github.com/mattn/go-sqlite3 with the
// cgo_sqlite tag for CGO builds. Migrations are semver-gated and applied
// on open.
package catalog
