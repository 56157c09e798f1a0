// Package export writes meshes and section outlines to files: binary STL
// for solids, DXF and SVG for section outlines, and PNG or ASCII charts of
// the chord and twist distribution along a span.
package export
