// Package tiling lengthens, shortens and reveals placed clips using nothing but the host's create, duplicate,
// delete and property primitives.
package tiling

import (
	"fmt"
	"math"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/config"
	"github.com/robmorgan/cliptile/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Engine runs resize operations against one host. It is not safe for concurrent use: every operation issues
// its primitive calls strictly in sequence and leaves the holding region empty when it returns.
type Engine struct {
	host         clip.Host
	clearance    Clearance
	epsilon      float64
	holdingGap   float64
	stripPreRoll bool
}

// Option customises an Engine.
type Option func(*Engine)

// WithClearance overrides the clearance strategy chosen by the config.
func WithClearance(c Clearance) Option {
	return func(e *Engine) {
		e.clearance = c
	}
}

// New builds an engine for host h.
func New(h clip.Host, cfg config.TilerConfig, opts ...Option) *Engine {
	e := &Engine{
		host:         h,
		clearance:    ClearanceFor(cfg.Clearance),
		epsilon:      cfg.Epsilon,
		holdingGap:   cfg.HoldingGap,
		stripPreRoll: cfg.StripPreRoll,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// read snapshots a clip and checks it is placed on track; properties alone do not say which track a clip is on.
func (e *Engine) read(track int, id clip.ID) (clip.Clip, error) {
	c, err := clip.ReadClip(e.host, track, id)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("reading clip %d: %w", id, err)
	}
	ids, err := e.host.GetOverlappingClipIDs(track, c.StartTime, c.EndTime)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("listing clips on track %d: %w", track, err)
	}
	if !slices.Contains(ids, id) {
		return clip.Clip{}, fmt.Errorf("%w: clip %d is not on track %d", ErrInvalidRequest, id, track)
	}
	return c, nil
}

// holdingStart returns the first beat of the scratch region on a track: past every clip currently placed,
// staged clips included.
func (e *Engine) holdingStart(track int) (float64, error) {
	ids, err := e.host.GetOverlappingClipIDs(track, math.Inf(-1), math.Inf(1))
	if err != nil {
		return 0, err
	}
	last := 0.0
	for _, id := range ids {
		end, err := clip.GetFloat(e.host, id, clip.PropEndTime)
		if err != nil {
			return 0, err
		}
		last = math.Max(last, end)
	}
	return math.Ceil(last) + e.holdingGap, nil
}

// duplicate is the only path to the host's duplicate primitive. The clearance strategy runs on the
// destination range first.
func (e *Engine) duplicate(track int, id clip.ID, position, length float64) (clip.ID, error) {
	if err := e.clearance.BeforeDuplicate(e, track, position, position+length); err != nil {
		return 0, fmt.Errorf("clearing %.3f-%.3f before duplicate: %w", position, position+length, err)
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"track": track, "source": id, "position": position, "length": length,
	}).Debug("duplicate clip")

	newID, err := e.host.DuplicateClipToPosition(track, id, position)
	if err != nil {
		return 0, fmt.Errorf("duplicating clip %d to %.3f: %w", id, position, err)
	}

	c, err := e.read(track, newID)
	if err != nil {
		return 0, err
	}
	if !clip.NearlyEqual(c.StartTime, position, e.epsilon) || !clip.NearlyEqual(c.Length(), length, e.epsilon) {
		return 0, fmt.Errorf("%w: duplicate of clip %d landed at %.3f-%.3f, expected %.3f-%.3f",
			ErrInconsistent, id, c.StartTime, c.EndTime, position, position+length)
	}
	return newID, nil
}

// duplicateToHolding copies a clip into the holding region. length is the placed length the copy will have.
func (e *Engine) duplicateToHolding(track int, id clip.ID, length float64) (clip.ID, error) {
	start, err := e.holdingStart(track)
	if err != nil {
		return 0, err
	}
	return e.duplicate(track, id, start, length)
}

func (e *Engine) deleteClip(track int, id clip.ID) error {
	logger.GetProjectLogger().WithFields(logrus.Fields{"track": track, "clip": id}).Debug("delete clip")
	if err := e.host.DeleteClip(track, id); err != nil {
		return fmt.Errorf("deleting clip %d: %w", id, err)
	}
	return nil
}

// beatsPerUnit is how many timeline beats one content unit of c occupies.
func beatsPerUnit(c clip.Clip) float64 {
	if c.Kind == clip.KindAudio && !c.Warped && !c.Looping {
		if span := c.EndMarker - c.StartMarker; span > 0 {
			return c.Length() / span
		}
	}
	return 1
}
