// Package annotation holds the labeled point annotations of one image and the
// linear undo/redo history of edits made to them.
//
// # Classes
//
// Every point belongs to exactly one MarkerClass. Iteration over classes always
// follows the fixed order Positive, Other, Negative, which is also the tie-break
// order of RemoveNearest.
//
// # Identity
//
// Points carry a store-assigned ID that is unique among the points currently
// held. IDs are handles for clients, not spatial keys: the history locates the
// point to undo by coordinate equality, as the annotation files do.
//
// # Coordinates
//
// Coordinates are source-image pixels. The store performs no bounds checks;
// validation belongs to the caller that knows the image size.
package annotation
