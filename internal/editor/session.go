package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/removebg"
)

// Options configures a Session.
type Options struct {
	// Remover performs background removal. A nil Remover makes
	// StartBackgroundRemoval fail with removebg.ErrRemovalFailed.
	Remover removebg.Remover

	// Export tunes encoding for Session.Export.
	Export imaging.ExportOptions
}

// Session owns the image being edited and its pending adjustments. Every
// mutation goes through one of its transitions:
//
//	Empty       --Load-->                    Ready
//	Ready       --ActivateCrop-->            CropPending
//	CropPending --CancelCrop-->              Ready
//	CropPending --ApplyCrop-->               Ready (buffer replaced)
//	Ready       --Set*/RotateClockwise-->    Ready
//	Ready       --StartBackgroundRemoval-->  Removing
//	Removing    --(success)-->               Ready (buffer replaced)
//	Removing    --(failure)-->               Ready (buffer unchanged)
//	any         --Reset-->                   Empty
//
// A Session is safe for concurrent use; background removal results arrive on
// their own goroutine. Export and Preview render from a snapshot taken under
// the lock and never block transitions while encoding.
type Session struct {
	remover    removebg.Remover
	exportOpts imaging.ExportOptions

	mu      sync.Mutex
	state   State
	buf     *imaging.Buffer
	imageID uuid.UUID
	adj     imaging.Adjustments

	// cropBasis is buf with the pending rotation baked in. Crop regions are
	// expressed in its coordinates. Only set in StateCropPending.
	cropBasis *imaging.Buffer
	crop      imaging.Region

	removal *Removal
	lastErr error
}

// New creates an empty session.
func New(opts Options) *Session {
	return &Session{
		remover:    opts.Remover,
		exportOpts: opts.Export,
		adj:        imaging.Identity(),
	}
}

// Status is a snapshot of the session.
type Status struct {
	State State `json:"state"`

	// ImageID identifies the current buffer; it changes whenever the pixels
	// are replaced. Empty when no image is loaded.
	ImageID string `json:"image_id,omitempty"`

	// Width and Height are the stored buffer dimensions.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// DisplayWidth and DisplayHeight are the dimensions after the pending
	// rotation, which is what Preview and Export produce.
	DisplayWidth  int `json:"display_width,omitempty"`
	DisplayHeight int `json:"display_height,omitempty"`

	Adjustments imaging.Adjustments `json:"adjustments"`

	// Crop is the region being edited, in display (rotated) pixel
	// coordinates. Only set while the crop tool is active.
	Crop *imaging.Region `json:"crop,omitempty"`

	// LastError is the message of the most recent failed background removal.
	LastError string `json:"last_error,omitempty"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state, Adjustments: s.adj}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.buf == nil {
		return st
	}
	st.ImageID = s.imageID.String()
	st.Width, st.Height = s.buf.Width(), s.buf.Height()
	st.DisplayWidth, st.DisplayHeight = imaging.RotatedSize(st.Width, st.Height, s.adj.Rotation)
	if s.state == StateCropPending {
		c := s.crop
		st.Crop = &c
	}
	return st
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the current buffer and adjustments. The buffer is nil when
// the session is empty. Buffers are immutable, so the result stays valid
// after later transitions.
func (s *Session) Current() (*imaging.Buffer, imaging.Adjustments) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf, s.adj
}

// install makes buf current under a fresh identity and clears adjustments.
// Callers hold s.mu.
func (s *Session) install(buf *imaging.Buffer) {
	s.buf = buf
	s.imageID = uuid.New()
	s.adj = imaging.Identity()
	s.cropBasis = nil
	s.crop = imaging.Region{}
}

// Load makes buf the image being edited.
func (s *Session) Load(buf *imaging.Buffer) error {
	if buf == nil {
		return fmt.Errorf("%w: nil buffer", imaging.ErrInvalidBuffer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateEmpty:
	case StateRemoving:
		return ErrBusy
	default:
		return ErrImageLoaded
	}

	s.install(buf)
	s.lastErr = nil
	s.state = StateReady
	Logger().Debug("image loaded", "image_id", s.imageID, "width", buf.Width(), "height", buf.Height())
	return nil
}

// Reset discards the image and all adjustments, returning to StateEmpty.
// An in-flight background removal is cancelled and its result will be
// discarded. Resetting an empty session is a no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removal != nil {
		s.removal.cancel()
		s.removal = nil
	}
	s.state = StateEmpty
	s.buf = nil
	s.imageID = uuid.Nil
	s.adj = imaging.Identity()
	s.cropBasis = nil
	s.crop = imaging.Region{}
	s.lastErr = nil
	Logger().Debug("session reset")
}

// checkIdle returns the error for starting a tool in the current state.
// Callers hold s.mu.
func (s *Session) checkIdle() error {
	switch s.state {
	case StateEmpty:
		return ErrNoImage
	case StateRemoving:
		return ErrBusy
	case StateCropPending:
		return ErrToolConflict
	}
	return nil
}

// checkCropping returns the error for a crop operation in the current state.
// Callers hold s.mu.
func (s *Session) checkCropping() error {
	switch s.state {
	case StateCropPending:
		return nil
	case StateRemoving:
		return ErrBusy
	case StateEmpty:
		return ErrNoImage
	}
	return ErrNoCrop
}

// ActivateCrop starts the crop tool. The pending rotation is baked into a
// crop basis so that regions are defined in the orientation the user sees;
// the stored buffer is not touched until ApplyCrop. The initial region
// covers the whole image and is returned.
func (s *Session) ActivateCrop() (imaging.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdle(); err != nil {
		return imaging.Region{}, err
	}

	basis, err := imaging.Rotate(s.buf, s.adj.Rotation)
	if err != nil {
		return imaging.Region{}, err
	}
	s.cropBasis = basis
	s.crop = imaging.FullRegion(basis.Width(), basis.Height())
	s.state = StateCropPending
	Logger().Debug("crop activated", "width", basis.Width(), "height", basis.Height())
	return s.crop, nil
}

// UpdateCrop replaces the region being edited. The region is in pixel units
// of the rotated image and is clamped to its bounds. An invalid region is
// rejected and the previous one kept.
func (s *Session) UpdateCrop(region imaging.Region) (imaging.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCropping(); err != nil {
		return imaging.Region{}, err
	}
	return s.setCrop(region)
}

// UpdateCropFromDisplay converts a region selected on a scaled preview into
// pixel units and makes it the region being edited.
func (s *Session) UpdateCropFromDisplay(d imaging.DisplayRegion) (imaging.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCropping(); err != nil {
		return imaging.Region{}, err
	}
	region, err := d.ToPixels(s.cropBasis.Width(), s.cropBasis.Height())
	if err != nil {
		return imaging.Region{}, err
	}
	return s.setCrop(region)
}

// setCrop validates and stores region. Callers hold s.mu in StateCropPending.
func (s *Session) setCrop(region imaging.Region) (imaging.Region, error) {
	w, h := s.cropBasis.Width(), s.cropBasis.Height()
	if _, err := region.PixelRect(w, h); err != nil {
		return imaging.Region{}, err
	}
	clamped, err := region.Clamped(w, h)
	if err != nil {
		return imaging.Region{}, err
	}
	s.crop = clamped
	return clamped, nil
}

// CancelCrop leaves the crop tool without changing the image.
func (s *Session) CancelCrop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCropping(); err != nil {
		return err
	}
	s.cropBasis = nil
	s.crop = imaging.Region{}
	s.state = StateReady
	Logger().Debug("crop cancelled")
	return nil
}

// ApplyCrop commits the region being edited. The crop is a flattening point:
// the result has rotation, brightness and contrast baked in, replaces the
// current buffer, and adjustments return to identity. On error the session
// stays in StateCropPending with the image unchanged.
func (s *Session) ApplyCrop() (*imaging.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCropping(); err != nil {
		return nil, err
	}

	cropped, err := imaging.CommitCrop(s.cropBasis, s.crop)
	if err != nil {
		return nil, err
	}
	out := imaging.AdjustColor(cropped, s.adj.Brightness, s.adj.Contrast)

	s.install(out)
	s.state = StateReady
	Logger().Debug("crop applied", "image_id", s.imageID, "width", out.Width(), "height", out.Height())
	return out, nil
}

// adjust applies fn to the adjustments if no tool blocks it.
func (s *Session) adjust(fn func(a *imaging.Adjustments)) (imaging.Adjustments, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdle(); err != nil {
		return s.adj, err
	}
	next := s.adj
	fn(&next)
	next, err := next.Normalized()
	if err != nil {
		return s.adj, err
	}
	s.adj = next
	return s.adj, nil
}

// SetBrightness sets the brightness level, clamped to [0,200].
func (s *Session) SetBrightness(v float64) (imaging.Adjustments, error) {
	return s.adjust(func(a *imaging.Adjustments) { a.Brightness = v })
}

// SetContrast sets the contrast level, clamped to [0,200].
func (s *Session) SetContrast(v float64) (imaging.Adjustments, error) {
	return s.adjust(func(a *imaging.Adjustments) { a.Contrast = v })
}

// SetRotation sets the pending clockwise rotation. Multiples of 90 are
// wrapped into [0,360); any other angle fails with
// imaging.ErrUnsupportedRotation and leaves the adjustments unchanged.
func (s *Session) SetRotation(degrees int) (imaging.Adjustments, error) {
	return s.adjust(func(a *imaging.Adjustments) { a.Rotation = degrees })
}

// RotateClockwise adds a quarter turn to the pending rotation.
func (s *Session) RotateClockwise() (imaging.Adjustments, error) {
	return s.adjust(func(a *imaging.Adjustments) { a.Rotation += 90 })
}

// SetAdjustments replaces all adjustments at once, normalizing them.
func (s *Session) SetAdjustments(adj imaging.Adjustments) (imaging.Adjustments, error) {
	return s.adjust(func(a *imaging.Adjustments) { *a = adj })
}

// UpdateAdjustments applies fn to the current adjustments under the session
// lock and normalizes the result. fn sees the adjustments of the buffer that
// is current at that moment, so partial updates cannot resurrect values
// cleared by a concurrent install. fn must not call back into the session.
func (s *Session) UpdateAdjustments(fn func(a *imaging.Adjustments)) (imaging.Adjustments, error) {
	return s.adjust(fn)
}

// StartBackgroundRemoval uploads the rendered image (all adjustments baked
// in) and returns without waiting for the response. ctx bounds the request.
//
// While the request is in flight the session is in StateRemoving and every
// other mutation fails with ErrBusy. On success the returned image replaces
// the buffer and adjustments reset to identity; on failure the buffer is
// kept and the error is available from the Removal and from Status.
func (s *Session) StartBackgroundRemoval(ctx context.Context) (*Removal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdle(); err != nil {
		return nil, err
	}
	if s.remover == nil {
		return nil, fmt.Errorf("%w: no remover configured", removebg.ErrRemovalFailed)
	}

	src, err := imaging.Flatten(s.buf, s.adj)
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithCancel(ctx)
	r := &Removal{
		imageID: s.imageID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.removal = r
	s.lastErr = nil
	s.state = StateRemoving
	Logger().Debug("background removal started", "image_id", s.imageID)

	go s.runRemoval(rctx, r, src)
	return r, nil
}

// snapshot returns what the user currently sees: the crop basis while
// cropping (its rotation already baked), otherwise the buffer and its
// adjustments.
func (s *Session) snapshot() (*imaging.Buffer, imaging.Adjustments, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return nil, imaging.Adjustments{}, ErrNoImage
	}
	if s.state == StateCropPending {
		adj := s.adj
		adj.Rotation = 0
		return s.cropBasis, adj, nil
	}
	return s.buf, s.adj, nil
}

// Export flattens the current image with its adjustments and encodes it.
// The session is not modified; exporting is allowed in any non-empty state.
func (s *Session) Export(format imaging.Format) ([]byte, error) {
	buf, adj, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return imaging.Export(buf, adj, format, s.exportOpts)
}

// Preview renders the current view fitted inside maxWidth x maxHeight.
func (s *Session) Preview(maxWidth, maxHeight int) (*imaging.Preview, error) {
	buf, adj, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return imaging.RenderPreview(buf, adj, maxWidth, maxHeight)
}

// CropPreview renders the crop basis like Preview and marks the region being
// edited on it. It fails with ErrNoCrop unless the crop tool is active.
func (s *Session) CropPreview(maxWidth, maxHeight int, style imaging.OverlayStyle) (*imaging.Preview, error) {
	s.mu.Lock()
	if err := s.checkCropping(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	basis, adj, region := s.cropBasis, s.adj, s.crop
	s.mu.Unlock()

	adj.Rotation = 0
	p, err := imaging.RenderPreview(basis, adj, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	marked, err := imaging.DrawCropOverlay(p, region, style)
	if err != nil {
		return nil, err
	}
	p.Image = marked
	return p, nil
}

// SampleColors samples the rendered view at full resolution.
func (s *Session) SampleColors(points []imaging.LabeledPoint) (*imaging.MultiColorResult, error) {
	buf, adj, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	flat, err := imaging.Flatten(buf, adj)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColors(flat, points)
}
