package editor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/removebg"
)

// Removal is an in-flight background removal. It is tagged with the identity
// of the buffer it was issued against; its result is applied only if that
// buffer is still current when the response arrives.
type Removal struct {
	imageID uuid.UUID
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// ImageID returns the identity of the buffer the request was issued against.
func (r *Removal) ImageID() uuid.UUID { return r.imageID }

// Done is closed once the outcome is known and has been applied or discarded.
func (r *Removal) Done() <-chan struct{} { return r.done }

// Err returns ErrRemovalPending until Done is closed. After that it returns
// nil if the new image was installed, an error wrapping
// removebg.ErrRemovalFailed if the service failed, or ErrRemovalDiscarded if
// the result went stale.
func (r *Removal) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return ErrRemovalPending
	}
}

// Wait blocks until the removal completes or ctx is done.
func (r *Removal) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runRemoval performs the request and hands the outcome back to the session.
func (s *Session) runRemoval(ctx context.Context, r *Removal, src *imaging.Buffer) {
	result, err := s.remover.Remove(ctx, src)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", removebg.ErrRemovalFailed)
	}
	s.finishRemoval(r, result, err)
}

func (s *Session) finishRemoval(r *Removal, result *imaging.Buffer, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(r.done)
	defer r.cancel()

	log := Logger().With("image_id", r.imageID)

	if s.removal != r || s.state != StateRemoving || s.imageID != r.imageID {
		r.err = ErrRemovalDiscarded
		log.Warn("discarding stale background removal result", "state", s.state, "error", err)
		return
	}
	s.removal = nil
	s.state = StateReady

	if err != nil {
		r.err = err
		s.lastErr = err
		log.Warn("background removal failed", "error", err)
		return
	}

	s.install(result)
	log.Debug("background removal applied", "new_image_id", s.imageID,
		"width", result.Width(), "height", result.Height())
}
