// Package builder coordinates the pack pipeline: discover note files,
// validate their commands, split them into chunks, bin-pack the chunks
// into parts, encode the containers and emit blobs, AppVars and the build
// manifest.
//
// Notes are split concurrently under a bounded errgroup; everything that
// affects output ordering (note ids, global part ids, the warning report,
// blob emission) happens in a single sequential pass over notes in
// discovery order, so builds are deterministic regardless of worker count.
//
// Fatal errors (bad split parameters, a chunk that cannot fit a container,
// an oversized blob, I/O failures) abort the build before any output file
// is written. Quality warnings (hard splits, unknown commands, a missing
// command whitelist) accumulate in Diagnostics and are reported in bulk
// after the build; they never alter output.
package builder
