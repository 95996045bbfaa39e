package tiling

import (
	"fmt"
	"math"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/config"
	"github.com/robmorgan/cliptile/logger"
	"github.com/sirupsen/logrus"
)

// Clearance decides what happens to a duplicate's destination range before the duplicate is made. The host
// corrupts its arrangement when a duplicate lands on an occupied range.
type Clearance interface {
	BeforeDuplicate(e *Engine, track int, start, end float64) error
}

// AlwaysClear empties the destination with ClearRange.
type AlwaysClear struct{}

// NeverClear trusts the caller that the destination is already free.
type NeverClear struct{}

func (AlwaysClear) BeforeDuplicate(e *Engine, track int, start, end float64) error {
	return e.ClearRange(track, start, end)
}

func (NeverClear) BeforeDuplicate(*Engine, int, float64, float64) error {
	return nil
}

// ClearanceFor maps a config value onto a strategy. Anything unrecognised clears.
func ClearanceFor(name string) Clearance {
	if name == config.ClearanceNever {
		return NeverClear{}
	}
	return AlwaysClear{}
}

// ClearRange removes every placed clip from [start, end) on a track. Clips reaching outside the range keep
// those parts, playing the same content at the same beats as before.
func (e *Engine) ClearRange(track int, start, end float64) error {
	if end-start <= e.epsilon {
		return nil
	}

	ids, err := e.host.GetOverlappingClipIDs(track, start, end)
	if err != nil {
		return fmt.Errorf("listing clips in %.3f-%.3f: %w", start, end, err)
	}

	if len(ids) == 0 {
		return nil
	}

	// snapshot first; clearing one clip never moves another. Every clip the host reports counts, however
	// small its overlap.
	occupants := make([]clip.Clip, 0, len(ids))
	for _, id := range ids {
		c, err := e.read(track, id)
		if err != nil {
			return err
		}
		occupants = append(occupants, c)
	}

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{
		"track": track, "start": start, "end": end, "occupants": len(occupants),
	}).Debug("clear range")

	for _, c := range occupants {
		before := c.StartTime < start-e.epsilon
		after := c.EndTime > end+e.epsilon
		overlap := math.Min(end, c.EndTime) - math.Max(start, c.StartTime)

		switch {
		case c.StartTime >= start && c.EndTime <= end:
			err = e.deleteClip(track, c.ID)
		case overlap <= e.epsilon:
			err = e.trimSliver(track, c, start, end)
		case !before && !after:
			err = e.deleteClip(track, c.ID)
		case before && !after:
			err = e.ForceTruncateViaOverlay(track, c.ID, start)
		default:
			err = e.keepTail(track, c, start, end, before)
		}
		if err != nil {
			return fmt.Errorf("clearing clip %d from %.3f-%.3f: %w", c.ID, start, end, err)
		}
	}

	return e.verifyClear(track, start, end)
}

// keepTail clears c from [start, end) when it runs past end. The part after end is staged in the holding
// region, the original is cut back to start (or deleted when it begins inside the range), and the staged
// part is moved to end.
func (e *Engine) keepTail(track int, c clip.Clip, start, end float64, keepHead bool) error {
	staged, err := e.duplicateToHolding(track, c.ID, c.Length())
	if err != nil {
		return err
	}
	if err := e.splitTail(track, c, staged, start, end, keepHead); err != nil {
		e.discard(track, staged)
		return err
	}
	_, err = e.Relocate(track, staged, end)
	return err
}

// splitTail cuts the original back and reduces the staged copy to the part after end.
func (e *Engine) splitTail(track int, c clip.Clip, staged clip.ID, start, end float64, keepHead bool) error {
	var err error
	if keepHead {
		err = e.ForceTruncateViaOverlay(track, c.ID, start)
	} else {
		err = e.deleteClip(track, c.ID)
	}
	if err != nil {
		return err
	}

	stagedClip, err := e.read(track, staged)
	if err != nil {
		return err
	}
	headLength := end - c.StartTime
	tailLength := c.EndTime - end
	if !clip.NearlyEqual(c.StartTime+headLength+tailLength, c.EndTime, e.epsilon) {
		return fmt.Errorf("%w: split of clip %d at %.3f does not add up", ErrInconsistent, c.ID, end)
	}

	if err := e.advanceContent(staged, stagedClip, headLength); err != nil {
		return err
	}
	return e.ForceTruncateViaOverlay(track, staged, stagedClip.StartTime+tailLength)
}

// trimSliver removes an overlap too small to split the clip around. A filler over just the overlap makes the
// host cut the clip back to the range edge, moving its start marker when it loses its head.
func (e *Engine) trimSliver(track int, c clip.Clip, start, end float64) error {
	from := math.Max(start, c.StartTime)
	to := math.Min(end, c.EndTime)

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"track": track, "clip": c.ID, "from": from, "to": to,
	}).Debug("trim sliver")

	filler, err := e.host.CreateEmptyFiller(track, from, to-from)
	if err != nil {
		return fmt.Errorf("creating overlay at %.4f-%.4f: %w", from, to, err)
	}
	return e.deleteClip(track, filler)
}

func (e *Engine) verifyClear(track int, start, end float64) error {
	ids, err := e.host.GetOverlappingClipIDs(track, start, end)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return fmt.Errorf("%w: clips %v still occupy %.3f-%.3f after clearing", ErrInconsistent, ids, start, end)
	}
	return nil
}
