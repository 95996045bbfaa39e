package tiling

import (
	"fmt"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/logger"
	"github.com/sirupsen/logrus"
)

// StageShortened copies source into the holding region and cuts the copy down to length beats. The copy
// is returned; it must be moved out with Relocate or deleted before the operation ends.
func (e *Engine) StageShortened(track int, source clip.ID, length float64) (clip.ID, error) {
	src, err := e.read(track, source)
	if err != nil {
		return 0, err
	}
	if length <= e.epsilon {
		return 0, fmt.Errorf("%w: cannot stage a %.4f beat copy", ErrInvalidRequest, length)
	}

	staged, err := e.duplicateToHolding(track, source, src.Length())
	if err != nil {
		return 0, err
	}
	if length < src.Length()-e.epsilon {
		start, err := clip.GetFloat(e.host, staged, clip.PropStartTime)
		if err != nil {
			e.discard(track, staged)
			return 0, err
		}
		if err := e.ForceTruncateViaOverlay(track, staged, start+length); err != nil {
			e.discard(track, staged)
			return 0, err
		}
	}
	return staged, nil
}

// Relocate moves a staged clip to target: the destination is cleared, the staged clip is duplicated there
// and the staged clip is deleted.
func (e *Engine) Relocate(track int, staged clip.ID, target float64) (clip.ID, error) {
	c, err := e.read(track, staged)
	if err != nil {
		return 0, err
	}
	placed, err := e.duplicate(track, staged, target, c.Length())
	if err != nil {
		e.discard(track, staged)
		return 0, err
	}
	if err := e.deleteClip(track, staged); err != nil {
		return 0, err
	}
	return placed, nil
}

// CreatePartialTile places a length-beat piece of source at position, playing from offset content units
// into source's content window.
func (e *Engine) CreatePartialTile(track int, source clip.ID, position, length, offset float64) (Tile, error) {
	src, err := e.read(track, source)
	if err != nil {
		return Tile{}, err
	}

	staged, err := e.StageShortened(track, source, length)
	if err != nil {
		return Tile{}, err
	}
	if err := e.setContentStart(staged, src, offset, length); err != nil {
		e.discard(track, staged)
		return Tile{}, err
	}
	placed, err := e.Relocate(track, staged, position)
	if err != nil {
		return Tile{}, err
	}
	return e.describeTile(track, placed, src, offset, true)
}

// discard deletes a staged clip after a failed step so the holding region is left empty. The step's own
// error is what gets reported; a failure here is only logged.
func (e *Engine) discard(track int, staged clip.ID) {
	if err := e.host.DeleteClip(track, staged); err != nil {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"track": track, "clip": staged,
		}).Warnf("could not remove staged clip from the holding region: %v", err)
	}
}
