// Package simulation implements the deterministic core of the
// objection-handling simulation engine: pool selection, the per-turn
// injection policy, score computation from evaluation signals, and the
// client reaction branch table. Everything in this package is pure and
// reproducible; calls to the text-generation service live in the service
// layer so the arithmetic here can be tested without network access.
package simulation
