// Package types defines the shared domain types for the notepack pipeline.
//
// The pipeline turns note text into fixed-capacity binary containers:
//
//	note text -> boundary scan -> deterministic split -> part packing ->
//	container encoding -> part blobs + index blob
//
// Core types:
//   - Chunk: a boundary-respecting substring of a note, tagged with the
//     SplitKind that terminated it. A note's chunks partition its text
//     exactly.
//   - Note: a source document with its id, title and chunk sequence.
//   - Part: a size-bounded group of chunks from one note, named after its
//     global part id (NTX0001, NTX0002, ...).
//   - IndexEntry: one row of the cross-note index container.
//
// The package also defines the error taxonomy for the build: fatal typed
// errors (SplitConfigError, PackError, EncodeError, ContainerError) wrap
// matching sentinels so callers can test with errors.Is.
package types
