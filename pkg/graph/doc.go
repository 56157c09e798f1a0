// Package graph defines the design graph types for spanloft.
// The design graph is an immutable DAG of parts, sections, placements and
// groups produced by evaluating a part script. It is the explicit document
// that downstream stages read; nothing is kept in global state.
package graph
