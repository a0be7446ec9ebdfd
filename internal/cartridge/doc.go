// Package cartridge owns the cartridge container format.
//
// Ownership boundary:
// - chunk type table and per-type size rules
// - chunk and cartridge header primitives
// - cartridge aggregate encode/decode
package cartridge
