// Package packer bin-packs a note's chunks into size-bounded part groups.
//
// Packing is greedy and strictly left-to-right: chunks accumulate into the
// current part until adding the next one would push the serialized size
// (header + entry table + payload) over the container capacity, at which
// point the part is closed and a new one starts. A chunk that cannot fit a
// container even alone is a fatal infeasibility, surfaced with the
// offending size and the limit.
package packer
