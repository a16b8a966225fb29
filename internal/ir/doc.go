// Package ir provides the canonical value representation shared by the
// testbench packages.
//
// Values recorded by a run (check results, trace samples, scenario
// fingerprints) are built from the sealed Value types in this package and
// serialized with Marshal, which produces RFC 8785 canonical JSON. Canonical
// bytes are what golden snapshots compare and what the content hashes in
// hash.go digest.
//
// Key design constraints:
//   - NO float types: signal values are unsigned integers, stored as int64
//   - NO null: absent optional fields are omitted, never encoded as null
//   - Logical time only (simulated steps), never wall-clock timestamps
//
// ir imports nothing internal, so every other package may depend on it.
package ir
