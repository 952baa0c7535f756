// Package viewport maps between image-pixel coordinates and view (window)
// coordinates under an independent pan and zoom.
//
// # Transform
//
// A ViewState holds a uniform zoom factor and a pan offset in view pixels:
//
//	view  = image*zoom + pan
//	image = (view - pan) / zoom
//
// Zoom is always kept within [ZoomMin, ZoomMax] by the operations in this
// package. ToImage returns ErrZeroZoom for a zero zoom rather than dividing by
// zero; callers holding a state produced here never see it.
//
// # Image Orientation
//
// Rotation and flips are not part of the transform. The "image" coordinates
// here are those of the displayed raster; see geometry.Orientation for the
// mapping back to source pixels.
package viewport
