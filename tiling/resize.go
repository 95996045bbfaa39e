package tiling

import (
	"fmt"
	"math"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/logger"
	"github.com/robmorgan/cliptile/rhythm"
	"github.com/sirupsen/logrus"
)

// Request asks for a clip to occupy Length beats from its current start time.
type Request struct {
	Track  int
	Clip   clip.ID
	Length float64
}

// Result describes what a resize left on the track.
type Result struct {
	Request Request

	// Clips lists every clip that now covers the resized span, in position order
	Clips []clip.ID

	// Tiles lists the clips the tile orchestrator created, if any
	Tiles []Tile

	// Achieved is the placed length actually reached, which is less than requested when content ran out
	Achieved float64

	Warnings []string
}

func (r *Result) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	logger.GetProjectLogger().WithFields(logrus.Fields{
		"track": r.Request.Track, "clip": r.Request.Clip,
	}).Warn(msg)
}

// Resize shortens or lengthens a clip. Shortening always truncates in place. Lengthening depends on the clip:
// looping clips are tiled, one-shot note clips reveal hidden notes and tile the rest, one-shot audio clips
// reveal more of their file up to its boundary.
//
// Caller errors are returned before anything is touched. Running out of content is not an error: the clip
// is lengthened as far as possible and the result carries a warning and the achieved length.
func (e *Engine) Resize(req Request) (Result, error) {
	res := Result{Request: req}

	if !e.host.HasTrack(req.Track) {
		return res, fmt.Errorf("%w: %d", ErrTrackNotFound, req.Track)
	}
	if req.Length <= 0 || math.IsNaN(req.Length) || math.IsInf(req.Length, 0) {
		return res, fmt.Errorf("%w: target length %v", ErrInvalidRequest, req.Length)
	}

	c, err := e.read(req.Track, req.Clip)
	if err != nil {
		return res, err
	}

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{
		"track": req.Track, "clip": req.Clip, "from": c.Length(), "to": req.Length, "variant": fmt.Sprintf("%T", c.Classify()),
	}).Info("resize")

	newEnd := c.StartTime + req.Length
	switch {
	case clip.NearlyEqual(newEnd, c.EndTime, e.epsilon):
		res.Clips = []clip.ID{c.ID}
		res.Achieved = c.Length()
		return res, nil
	case newEnd < c.EndTime:
		return e.shorten(res, c, newEnd)
	}

	switch v := c.Classify().(type) {
	case clip.Looping:
		return e.lengthenLooping(res, c, v, newEnd)
	case clip.OneShotNote:
		return e.lengthenOneShotNote(res, c, v, newEnd)
	case clip.OneShotAudioWarped:
		return e.lengthenWarped(res, c, v)
	case clip.OneShotAudioUnwarped:
		return e.lengthenUnwarped(res, c, v)
	}
	return res, fmt.Errorf("%w: unhandled clip variant %T", ErrInvalidRequest, c.Classify())
}

func (e *Engine) shorten(res Result, c clip.Clip, newEnd float64) (Result, error) {
	if err := e.ForceTruncateViaOverlay(c.Track, c.ID, newEnd); err != nil {
		return res, err
	}
	return e.finish(res, c.StartTime, []clip.ID{c.ID})
}

func (e *Engine) lengthenLooping(res Result, c clip.Clip, v clip.Looping, newEnd float64) (Result, error) {
	tiles, err := e.Tile(c.Track, c.ID, c.EndTime, newEnd-c.EndTime, e.loopContinuation(c), v.Loop.Length())
	res.Tiles = tiles
	if err != nil {
		return res, err
	}
	return e.finish(res, c.StartTime, append([]clip.ID{c.ID}, tileIDs(tiles)...))
}

// loopContinuation is the loop offset playing at a looping clip's end, where the next tile picks up.
func (e *Engine) loopContinuation(c clip.Clip) float64 {
	played := c.StartMarker + c.Length()
	if played < c.LoopStart {
		return 0
	}
	return e.wrapOffset(played-c.LoopStart, c.LoopEnd-c.LoopStart)
}

func (e *Engine) lengthenOneShotNote(res Result, c clip.Clip, v clip.OneShotNote, newEnd float64) (Result, error) {
	extent, err := e.host.GetContentExtent(c.ID)
	if err != nil {
		res.warn("cannot read note extent of clip %d, keeping it at %.3f beats: %v", c.ID, c.Length(), err)
		return e.finish(res, c.StartTime, []clip.ID{c.ID})
	}

	if extent <= v.Markers.End+e.epsilon {
		res.warn("clip %d has no notes past %.3f, filling %.3f-%.3f with an empty clip", c.ID, v.Markers.End, c.EndTime, newEnd)
		if err := e.ClearRange(c.Track, c.EndTime, newEnd); err != nil {
			return res, err
		}
		gap, err := e.host.CreateClip(c.Track, c.EndTime, newEnd-c.EndTime)
		if err != nil {
			return res, fmt.Errorf("creating empty clip for %.3f-%.3f: %w", c.EndTime, newEnd, err)
		}
		return e.finish(res, c.StartTime, []clip.ID{c.ID, gap})
	}

	want := newEnd - c.StartTime
	id, revealed, err := e.revealContent(c, math.Min(extent, v.Markers.Start+want))
	if err != nil {
		return res, err
	}
	clips := []clip.ID{id}

	if remainder := want - revealed; remainder > e.epsilon {
		tiles, err := e.Tile(c.Track, id, c.StartTime+revealed, remainder, revealed, revealed)
		res.Tiles = tiles
		if err != nil {
			return res, err
		}
		clips = append(clips, tileIDs(tiles)...)
	}
	return e.finish(res, c.StartTime, clips)
}

func (e *Engine) lengthenWarped(res Result, c clip.Clip, v clip.OneShotAudioWarped) (Result, error) {
	want := res.Request.Length

	boundary, err := e.probeBoundary(c.Track, v.File)
	if err != nil {
		// no probe result: extend as asked and take whatever the host clamps to
		res.warn("probing %q failed, extending clip %d and reading back the host's clamp: %v", v.File, c.ID, err)
		boundary = v.Markers.Start + want
	}

	if available := boundary - v.Markers.Start; want > available+e.epsilon {
		res.warn("clip %d can only reach %.3f of the requested %.3f beats before %q ends", c.ID, available, want, v.File)
		want = available
	}
	if want <= c.Length()+e.epsilon {
		res.warn("clip %d has no audio left past %.3f beats, keeping it", c.ID, c.Length())
		return e.finish(res, c.StartTime, []clip.ID{c.ID})
	}

	id, got, err := e.revealContent(c, v.Markers.Start+want)
	if err != nil {
		return res, err
	}
	if got < want-e.epsilon {
		res.warn("host clamped clip %d to %.3f beats", c.ID, got)
	}
	return e.finish(res, c.StartTime, []clip.ID{id})
}

func (e *Engine) lengthenUnwarped(res Result, c clip.Clip, v clip.OneShotAudioUnwarped) (Result, error) {
	ratio, err := rhythm.PlacementRatio(c.Length(), v.Markers.Length())
	if err != nil {
		res.warn("clip %d: %v, keeping it", c.ID, err)
		return e.finish(res, c.StartTime, []clip.ID{c.ID})
	}

	// markers are in seconds; the host clamps the end marker to the file and the read back is what counts
	deltaSeconds := (res.Request.Length - c.Length()) / ratio
	id, got, err := e.revealContent(c, v.Markers.End+deltaSeconds)
	if err != nil {
		return res, err
	}
	if id == c.ID {
		res.warn("clip %d has no audio left past %.3f beats, keeping it", c.ID, c.Length())
		return e.finish(res, c.StartTime, []clip.ID{c.ID})
	}
	if got < res.Request.Length-e.epsilon {
		res.warn("clip %d reached %.3f of the requested %.3f beats before %q ends", c.ID, got, res.Request.Length, v.File)
	}
	return e.finish(res, c.StartTime, []clip.ID{id})
}

// probeBoundary finds where an audio file ends, in beats, by placing a throwaway clip of the whole file in
// the holding region and reading its natural end marker.
func (e *Engine) probeBoundary(track int, file string) (float64, error) {
	if file == "" {
		return 0, fmt.Errorf("clip has no file reference")
	}
	start, err := e.holdingStart(track)
	if err != nil {
		return 0, err
	}
	probe, err := e.host.CreateAudioClip(track, file, start)
	if err != nil {
		return 0, err
	}
	boundary, readErr := clip.GetFloat(e.host, probe, clip.PropEndMarker)
	if err := e.deleteClip(track, probe); err != nil {
		return 0, err
	}
	if readErr != nil {
		return 0, readErr
	}
	if boundary <= e.epsilon {
		return 0, fmt.Errorf("file %q has no content", file)
	}
	return boundary, nil
}

// revealContent moves a one-shot clip's end marker to contentEnd and re-places the clip so its placed
// length follows the marker the host actually accepted. It returns the clip now at c's position and its
// placed length; when nothing was gained c is left where it is.
func (e *Engine) revealContent(c clip.Clip, contentEnd float64) (clip.ID, float64, error) {
	end, err := e.extendContentEnd(c.ID, contentEnd)
	if err != nil {
		return 0, 0, err
	}
	length := (end - c.StartMarker) * beatsPerUnit(c)
	if length <= c.Length()+e.epsilon {
		return c.ID, c.Length(), nil
	}

	staged, err := e.duplicateToHolding(c.Track, c.ID, length)
	if err != nil {
		return 0, 0, err
	}
	if err := e.deleteClip(c.Track, c.ID); err != nil {
		return 0, 0, err
	}
	id, err := e.Relocate(c.Track, staged, c.StartTime)
	if err != nil {
		return 0, 0, err
	}
	return id, length, nil
}

// finish reads back where the resized span ends and records the achieved length.
func (e *Engine) finish(res Result, start float64, clips []clip.ID) (Result, error) {
	res.Clips = clips
	end := start
	for _, id := range clips {
		t, err := clip.GetFloat(e.host, id, clip.PropEndTime)
		if err != nil {
			return res, err
		}
		end = math.Max(end, t)
	}
	res.Achieved = end - start
	return res, nil
}

func tileIDs(tiles []Tile) []clip.ID {
	ids := make([]clip.ID, len(tiles))
	for i, t := range tiles {
		ids[i] = t.ID
	}
	return ids
}
