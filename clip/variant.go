package clip

// Variant is the closed set of clip shapes the resize logic distinguishes. The concrete types are Looping,
// OneShotNote, OneShotAudioWarped and OneShotAudioUnwarped; no other package can add one.
type Variant interface {
	Window() ContentWindow
	sealed()
}

// Looping repeats its loop region to fill its placed duration.
type Looping struct {
	Loop ContentWindow
}

// OneShotNote plays its marker span of note data once.
type OneShotNote struct {
	Markers ContentWindow
}

// OneShotAudioWarped plays its marker span of a time-stretched audio file once. Markers are in beats.
type OneShotAudioWarped struct {
	Markers ContentWindow
	File    string
}

// OneShotAudioUnwarped plays its marker span of an audio file once at native rate. Markers are in seconds.
type OneShotAudioUnwarped struct {
	Markers ContentWindow
	File    string
}

func (v Looping) Window() ContentWindow              { return v.Loop }
func (v OneShotNote) Window() ContentWindow          { return v.Markers }
func (v OneShotAudioWarped) Window() ContentWindow   { return v.Markers }
func (v OneShotAudioUnwarped) Window() ContentWindow { return v.Markers }

func (Looping) sealed()              {}
func (OneShotNote) sealed()          {}
func (OneShotAudioWarped) sealed()   {}
func (OneShotAudioUnwarped) sealed() {}

// Classify maps a clip snapshot onto its variant.
func (c Clip) Classify() Variant {
	switch {
	case c.Looping:
		return Looping{Loop: c.ContentWindow()}
	case c.Kind == KindNote:
		return OneShotNote{Markers: c.ContentWindow()}
	case c.Warped:
		return OneShotAudioWarped{Markers: c.ContentWindow(), File: c.FileReference}
	default:
		return OneShotAudioUnwarped{Markers: c.ContentWindow(), File: c.FileReference}
	}
}
