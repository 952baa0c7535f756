// Package imaging loads slide images and produces every raster the server
// hands out: the adjusted display image, rendered views with markers, and
// annotated exports. It also computes colour statistics used to inspect
// stains.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Marker positions are continuous. A marker at (10, 10) is centred on the
// top-left corner of pixel (10, 10).
//
// # Adjustment Pipeline
//
// Apply runs a fixed sequence over a source image and never modifies it:
//
//  1. Rotation in quarter turns clockwise
//  2. Horizontal flip, then vertical flip
//  3. Brightness, contrast, gamma (factors in [0.1, 3.0], 1.0 is neutral)
//  4. One optional filter (BLUR, SHARPEN, EDGE, GAUSSIAN, EDGE_ENHANCE)
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is stateless.
package imaging
