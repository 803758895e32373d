// Package geometry holds the Cartesian primitives shared by the array design
// and TDOA packages.
//
// Responsibilities: 3D points, per-receiver bounds, receiver layouts with
// copy-on-write updates, receiver pairing and inter-receiver distances.
// Key types: Point, Interval, Bounds, Layout, Pair.
//
// Coordinates are metres. Axis indices are 0 (x), 1 (y) and 2 (z).
package geometry
