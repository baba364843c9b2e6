// Package infile owns the "in" file wire contract.
//
// Ownership boundary:
// - line layout and static description metadata
//
// - token formatting and parsing
//
// - overloaded pair classification (sign/magnitude sentinels)
//
// - encode/decode entry points
//
// Encode and Decode are pure and safe for concurrent use. File I/O belongs
// to callers; Write and Read only wrap an io.Writer / io.Reader.
package infile
