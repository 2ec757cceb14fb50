// Package editor implements the edit session: the single owner of the image
// being edited, its pending adjustments and the crop tool, with every
// mutation funneled through an explicit state machine.
//
// # States
//
//   - empty: no image
//   - ready: image loaded, no tool active
//   - crop_pending: crop tool active, a region is being edited
//   - removing: background removal in flight
//
// # Flattening
//
// Brightness, contrast and rotation are non-destructive: they live next to
// the buffer and are applied only when rendering. Two transitions replace
// the pixels and therefore bake every pending adjustment in first: applying
// a crop and a successful background removal. Adjustments return to
// identity afterwards, so the buffer and its adjustments never disagree.
//
// # Background Removal
//
// StartBackgroundRemoval returns a [Removal] immediately. The request runs
// on its own goroutine and is tagged with the identity of the buffer it was
// issued against. When the response arrives it is applied only if that
// buffer is still current and the session is still waiting for it;
// otherwise it is dropped and the Removal reports ErrRemovalDiscarded.
package editor
