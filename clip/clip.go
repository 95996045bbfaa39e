package clip

import (
	"fmt"
	"math"
)

// ID is the opaque handle the host assigns to every placed clip.
type ID int64

// Kind is the content type of a clip.
type Kind int

const (
	KindNote Kind = iota
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindAudio:
		return "audio"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ContentWindow is the portion of the underlying content a clip renders. Units are content units: beats for
// note and warped audio clips, seconds for unwarped audio clips.
type ContentWindow struct {
	Start float64
	End   float64
}

// Length returns the size of the window in content units.
func (w ContentWindow) Length() float64 {
	return w.End - w.Start
}

// Clip is a snapshot of a placed clip's properties. Placement is always in beats.
type Clip struct {
	ID    ID
	Track int

	StartTime float64
	EndTime   float64

	LoopStart   float64
	LoopEnd     float64
	StartMarker float64
	EndMarker   float64

	Looping       bool
	Kind          Kind
	Warped        bool
	FileReference string
}

// Length returns the placed duration in beats.
func (c Clip) Length() float64 {
	return c.EndTime - c.StartTime
}

// ContentWindow returns the loop region of a looping clip, or the marker span of a one-shot clip.
func (c Clip) ContentWindow() ContentWindow {
	if c.Looping {
		return ContentWindow{Start: c.LoopStart, End: c.LoopEnd}
	}
	return ContentWindow{Start: c.StartMarker, End: c.EndMarker}
}

// Overlaps reports whether the clip's placement intersects [start, end) by more than eps.
func (c Clip) Overlaps(start, end, eps float64) bool {
	return c.StartTime < end-eps && c.EndTime > start+eps
}

func (c Clip) String() string {
	w := c.ContentWindow()
	return fmt.Sprintf("clip#%d[%s %.3f-%.3f window %.3f-%.3f looping=%v]",
		c.ID, c.Kind, c.StartTime, c.EndTime, w.Start, w.End, c.Looping)
}

// Wrap folds x into [0, n). A non-positive n returns x unchanged.
func Wrap(x, n float64) float64 {
	if n <= 0 {
		return x
	}
	r := math.Mod(x, n)
	if r < 0 {
		r += n
	}
	return r
}

// NearlyEqual compares two beat or content positions within eps.
func NearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
