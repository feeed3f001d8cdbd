// Package geometry provides the 2D primitives used by the arrangement
// validator: points, rigid SE(2) poses, and simple polygons.
//
// Poses model a piece's placement in a shared unit space as a rotation
// followed by a translation. They compose and invert without accumulating
// state; relative poses are always derived from two absolute poses rather
// than chained frame to frame.
//
// Polygon operations cover the needs of overlap detection: signed area,
// winding, a simplicity check for registration-time validation, a
// separating-axis rejection test for convex polygons, and convex clipping
// for exact intersection areas.
package geometry
