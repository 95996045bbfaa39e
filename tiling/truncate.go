package tiling

import (
	"fmt"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/logger"
	"github.com/sirupsen/logrus"
)

// ForceTruncateViaOverlay shortens a clip so it ends at newEnd. The host has no resize primitive, so a
// throwaway filler is placed over [newEnd, end): the host shrinks the clip to make room, then the filler is
// deleted. A clip already ending at or before newEnd is left alone.
func (e *Engine) ForceTruncateViaOverlay(track int, id clip.ID, newEnd float64) error {
	c, err := e.read(track, id)
	if err != nil {
		return err
	}
	if newEnd >= c.EndTime-e.epsilon {
		return nil
	}
	if newEnd <= c.StartTime+e.epsilon {
		return fmt.Errorf("%w: truncating clip %d (%.3f-%.3f) to end at %.3f would remove it",
			ErrInvalidRequest, id, c.StartTime, c.EndTime, newEnd)
	}

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{
		"track": track, "clip": id, "from": c.EndTime, "to": newEnd,
	}).Debug("truncate via overlay")

	length := c.EndTime - newEnd
	if !clip.NearlyEqual(newEnd+length, c.EndTime, e.epsilon) {
		return fmt.Errorf("%w: overlay %.3f+%.3f does not reach clip end %.3f", ErrInconsistent, newEnd, length, c.EndTime)
	}

	filler, err := e.host.CreateEmptyFiller(track, newEnd, length)
	if err != nil {
		return fmt.Errorf("creating overlay at %.3f-%.3f: %w", newEnd, c.EndTime, err)
	}
	if err := e.deleteClip(track, filler); err != nil {
		return err
	}

	end, err := clip.GetFloat(e.host, id, clip.PropEndTime)
	if err != nil {
		return fmt.Errorf("reading end of clip %d after truncation: %w", id, err)
	}
	if !clip.NearlyEqual(end, newEnd, e.epsilon) {
		return fmt.Errorf("%w: clip %d ends at %.3f after truncation, expected %.3f", ErrInconsistent, id, end, newEnd)
	}
	return nil
}
