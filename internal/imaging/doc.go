// Package imaging provides the pixel transform and export pipeline of the
// photo editor.
//
// Everything in this package operates on a [Buffer], an immutable RGBA raster
// held in memory. Operations that change pixel content return a new Buffer;
// none of them modify their input.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Crop regions are expressed
// in raw pixel units (float64) of the buffer in its current orientation:
//   - (X, Y) is the top-left corner of the region
//   - Width and Height extend right and down from it
//
// Coordinates coming from a scaled display must go through
// [DisplayRegion.ToPixels]; normalized 0..1 coordinates go through
// [NormalizedRegion]. No other conversion happens implicitly.
//
// # Pipeline Order
//
// Pending adjustments are flattened in a fixed order:
//  1. rotation (clockwise, multiples of 90 degrees)
//  2. brightness
//  3. contrast
//  4. encoding
//
// Brightness and contrast do not commute, so the order is part of the
// contract of [ApplyColor] and [Export].
//
// # Thread Safety
//
// A Buffer never changes after construction and may be shared between
// goroutines. All functions in this package are stateless.
//
// # Error Handling
//
// Failures are reported through wrapped sentinel errors:
//   - ErrInvalidBuffer: dimensions or pixel length are inconsistent
//   - ErrInvalidRegion: a crop region is non-positive or outside the image
//   - ErrUnsupportedRotation: an angle that is not 0, 90, 180 or 270
//   - ErrUnsupportedFormat: an input or output format other than PNG/JPEG
package imaging
