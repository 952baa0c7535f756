// Package detection defines the automatic-counting capability and its
// placeholder implementation.
//
// # Detector
//
// A Detector proposes labeled points for an image of a given size. The session
// treats every proposal exactly like a manual click: points go through the
// normal add path, and the history is cleared afterwards so a detection run
// cannot be undone piecemeal.
//
// # Mock Detector
//
// MockDetector does not look at pixels. It draws a random number of points per
// class from a range that depends on the model kind and scatters them
// uniformly over the central 90% of the image. It exists so clients can
// exercise the counting workflow end to end; a real model can replace it
// behind the same interface.
//
// Model kinds:
//
//	ki67     positive 80-199, negative 200-399, other 3-7
//	mitosis  positive 30-79,  negative 60-149,  other 15-39
//
// Ranges are half-open. A fixed seed makes the output reproducible.
package detection
