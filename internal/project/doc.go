// Package project reads and writes the files a session persists: the
// annotation list (JSON array of labelled points), the project record
// (.hpa) bundling image path, calibration, display adjustments and
// annotations, and the recent-files list.
//
// Coordinates are always source-image pixels. Annotation files are written
// in label-id order (positive, negative, other) and read back tolerantly:
// records with a missing coordinate or unknown label are skipped and counted.
package project
