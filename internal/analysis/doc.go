// Package analysis derives counts, densities and spatial statistics from
// annotation points.
//
// Every function here is pure. Points are converted to micrometres with the
// calibration scale before any distance is measured, and areas are reported
// in square millimetres. Degenerate input (no points, a zero area, too few
// points for a statistic) yields zero-valued results, never an error.
//
// The scale passed in must be positive; the session enforces this before
// any calibration reaches an analysis.
package analysis
