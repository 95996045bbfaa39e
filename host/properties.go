package host

import (
	"fmt"
	"math"

	"github.com/robmorgan/cliptile/clip"
)

// GetProperty reads one property of a placed clip.
func (s *Session) GetProperty(id clip.ID, name clip.Property) (interface{}, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	c := e.clip
	switch name {
	case clip.PropStartTime:
		return c.StartTime, nil
	case clip.PropEndTime:
		return c.EndTime, nil
	case clip.PropLoopStart:
		return c.LoopStart, nil
	case clip.PropLoopEnd:
		return c.LoopEnd, nil
	case clip.PropStartMarker:
		return c.StartMarker, nil
	case clip.PropEndMarker:
		return c.EndMarker, nil
	case clip.PropLooping:
		return c.Looping, nil
	case clip.PropIsAudio:
		return c.Kind == clip.KindAudio, nil
	case clip.PropWarped:
		return c.Warped, nil
	case clip.PropFileReference:
		return c.FileReference, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
}

// SetProperty writes one property of a placed clip. Placement never changes as a result; audio end markers
// are clamped to the file boundary.
func (s *Session) SetProperty(id clip.ID, name clip.Property, value interface{}) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.clips[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	c := &e.clip

	switch name {
	case clip.PropLooping, clip.PropWarped:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("property %s expects a bool, got %T", name, value)
		}
		if name == clip.PropLooping {
			c.Looping = b
		} else if c.Kind == clip.KindAudio {
			c.Warped = b
		}
	case clip.PropLoopStart, clip.PropLoopEnd, clip.PropStartMarker, clip.PropEndMarker:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("property %s expects a float64, got %T", name, value)
		}
		if err := s.setMarker(c, name, v); err != nil {
			return err
		}
	case clip.PropStartTime, clip.PropEndTime, clip.PropIsAudio, clip.PropFileReference:
		return fmt.Errorf("%w: %s", ErrReadOnlyProperty, name)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}

	s.record("set:"+string(name), c.Track, id, c.StartTime, c.EndTime)
	return nil
}

func (s *Session) setMarker(c *clip.Clip, name clip.Property, v float64) error {
	if c.Kind == clip.KindAudio {
		v = math.Max(0, math.Min(v, s.boundary(*c)))
	}

	switch name {
	case clip.PropLoopStart:
		if !c.Looping {
			return ErrNotLooping
		}
		if v >= c.LoopEnd {
			return fmt.Errorf("loop start %.3f must be before loop end %.3f", v, c.LoopEnd)
		}
		c.LoopStart = v
	case clip.PropLoopEnd:
		if !c.Looping {
			return ErrNotLooping
		}
		if v <= c.LoopStart {
			return fmt.Errorf("loop end %.3f must be after loop start %.3f", v, c.LoopStart)
		}
		c.LoopEnd = v
	case clip.PropStartMarker:
		c.StartMarker = v
	case clip.PropEndMarker:
		c.EndMarker = v
	}
	return nil
}
