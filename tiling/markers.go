package tiling

import (
	"fmt"

	"github.com/robmorgan/cliptile/clip"
)

type markerWrite struct {
	name  clip.Property
	value float64
}

// writeMarkers applies marker and loop-region writes in order. Loop-region writes need looping enabled, so
// a one-shot clip is switched to looping for the duration and switched back afterwards; the clip's original
// looping flag is always what it ends with.
func (e *Engine) writeMarkers(id clip.ID, writes ...markerWrite) error {
	looping, err := clip.GetBool(e.host, id, clip.PropLooping)
	if err != nil {
		return err
	}

	needsLoop := false
	for _, w := range writes {
		if w.name == clip.PropLoopStart || w.name == clip.PropLoopEnd {
			needsLoop = true
		}
	}

	if needsLoop && !looping {
		if err := e.host.SetProperty(id, clip.PropLooping, true); err != nil {
			return fmt.Errorf("enabling looping on clip %d: %w", id, err)
		}
	}

	var writeErr error
	for _, w := range writes {
		if writeErr = e.host.SetProperty(id, w.name, w.value); writeErr != nil {
			writeErr = fmt.Errorf("writing %s=%.3f on clip %d: %w", w.name, w.value, id, writeErr)
			break
		}
	}

	if needsLoop && !looping {
		if err := e.host.SetProperty(id, clip.PropLooping, false); err != nil {
			return fmt.Errorf("restoring looping on clip %d: %w", id, err)
		}
	}
	return writeErr
}

// setContentStart points a tile at offset content units into src's content window. length is the tile's
// placed length in beats; one-shot tiles get an end marker to match.
func (e *Engine) setContentStart(id clip.ID, src clip.Clip, offset, length float64) error {
	window := src.ContentWindow()
	if src.Looping {
		if !e.stripPreRoll && offset == 0 && src.StartMarker < src.LoopStart {
			return nil
		}
		return e.writeMarkers(id, markerWrite{clip.PropStartMarker, window.Start + offset})
	}

	start := window.Start + offset
	end := start + length/beatsPerUnit(src)
	return e.writeMarkers(id,
		markerWrite{clip.PropStartMarker, start},
		markerWrite{clip.PropEndMarker, end},
	)
}

// advanceContent moves where a clip starts playing by deltaBeats of timeline without touching its placement,
// so the clip can later be moved deltaBeats later and still sound the same at every beat.
func (e *Engine) advanceContent(id clip.ID, c clip.Clip, deltaBeats float64) error {
	delta := deltaBeats / beatsPerUnit(c)
	marker := c.StartMarker + delta
	if c.Looping && marker >= c.LoopStart {
		marker = c.LoopStart + clip.Wrap(marker-c.LoopStart, c.LoopEnd-c.LoopStart)
	}
	return e.writeMarkers(id, markerWrite{clip.PropStartMarker, marker})
}

// extendContentEnd moves a one-shot clip's end marker, keeping the loop end in step with it.
func (e *Engine) extendContentEnd(id clip.ID, end float64) (float64, error) {
	if err := e.writeMarkers(id,
		markerWrite{clip.PropEndMarker, end},
		markerWrite{clip.PropLoopEnd, end},
	); err != nil {
		return 0, err
	}
	return clip.GetFloat(e.host, id, clip.PropEndMarker)
}
