package clip

import "fmt"

// Property names understood by Host.GetProperty and Host.SetProperty.
type Property string

const (
	PropStartTime     Property = "start_time"
	PropEndTime       Property = "end_time"
	PropLoopStart     Property = "loop_start"
	PropLoopEnd       Property = "loop_end"
	PropStartMarker   Property = "start_marker"
	PropEndMarker     Property = "end_marker"
	PropLooping       Property = "looping"
	PropIsAudio       Property = "is_audio_clip"
	PropWarped        Property = "warping"
	PropFileReference Property = "file_path"
)

// Host is the set of coarse primitives a media-arrangement engine exposes on placed clips. There is no
// primitive to resize a placed clip; everything else is built from these.
type Host interface {
	HasTrack(track int) bool

	CreateClip(track int, position, length float64) (ID, error)
	// CreateEmptyFiller places a clip whose content is irrelevant. Creating it forces any clip it overlaps to
	// give way.
	CreateEmptyFiller(track int, position, length float64) (ID, error)
	// CreateAudioClip places a clip referencing file at its natural length.
	CreateAudioClip(track int, file string, position float64) (ID, error)
	DuplicateClipToPosition(track int, id ID, position float64) (ID, error)
	DeleteClip(track int, id ID) error

	GetProperty(id ID, name Property) (interface{}, error)
	SetProperty(id ID, name Property, value interface{}) error

	GetOverlappingClipIDs(track int, start, end float64) ([]ID, error)
	// GetContentExtent returns, in content units, the latest note end of a note clip or the true file
	// boundary of an audio clip.
	GetContentExtent(id ID) (float64, error)
}

// ReadClip loads a full snapshot of a clip's properties.
func ReadClip(h Host, track int, id ID) (Clip, error) {
	c := Clip{ID: id, Track: track}
	floats := []struct {
		name Property
		dst  *float64
	}{
		{PropStartTime, &c.StartTime},
		{PropEndTime, &c.EndTime},
		{PropLoopStart, &c.LoopStart},
		{PropLoopEnd, &c.LoopEnd},
		{PropStartMarker, &c.StartMarker},
		{PropEndMarker, &c.EndMarker},
	}
	for _, f := range floats {
		v, err := GetFloat(h, id, f.name)
		if err != nil {
			return Clip{}, err
		}
		*f.dst = v
	}

	var err error
	if c.Looping, err = GetBool(h, id, PropLooping); err != nil {
		return Clip{}, err
	}
	audio, err := GetBool(h, id, PropIsAudio)
	if err != nil {
		return Clip{}, err
	}
	if audio {
		c.Kind = KindAudio
		if c.Warped, err = GetBool(h, id, PropWarped); err != nil {
			return Clip{}, err
		}
		if c.FileReference, err = GetString(h, id, PropFileReference); err != nil {
			return Clip{}, err
		}
	}

	return c, nil
}

// GetFloat reads a numeric property.
func GetFloat(h Host, id ID, name Property) (float64, error) {
	v, err := h.GetProperty(id, name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("property %s of clip %d is %T, not a number", name, id, v)
}

// GetBool reads a boolean property.
func GetBool(h Host, id ID, name Property) (bool, error) {
	v, err := h.GetProperty(id, name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("property %s of clip %d is %T, not a bool", name, id, v)
	}
	return b, nil
}

// GetString reads a string property.
func GetString(h Host, id ID, name Property) (string, error) {
	v, err := h.GetProperty(id, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %s of clip %d is %T, not a string", name, id, v)
	}
	return s, nil
}
