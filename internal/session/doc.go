// Package session owns the state of one annotation session: the image and
// its display adjustments, the annotation store and its undo history, the
// viewport, calibration and marker style.
//
// A Session is driven from a single goroutine. Every operation that mutates
// annotations notifies the Renderer exactly once when it completes, however
// many points it touched.
//
// Annotations are stored in source-image pixels. Operations taking pointer
// coordinates map them from the window through the viewport and the inverse
// display orientation first; rendering maps markers forward again, so
// markers follow the tissue under rotation and flips.
package session
