package host

import (
	"cmp"
	"fmt"
	"math"
	"sync"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/logger"
	"github.com/robmorgan/cliptile/rhythm"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// overlapTolerance is how far two placements may touch before the session treats them as overlapping.
const overlapTolerance = 1e-9

// Note is a single note event inside a note clip, in content beats.
type Note struct {
	Start  float64
	Length float64
}

// Call records one primitive invocation made against the session.
type Call struct {
	Op    string
	Track int
	ID    clip.ID
	Start float64
	End   float64
}

type entry struct {
	clip  clip.Clip
	notes []Note
}

// Session is an in-memory arrangement that behaves like the host engine: clips never overlap, a created clip
// forces the clips it covers to give way, placed lengths only change through that side effect, and duplicating
// onto an occupied range corrupts the arrangement.
type Session struct {
	tracks    int
	clips     map[clip.ID]*entry
	files     map[string]float64
	tempo     rhythm.Tempo
	currentID clip.ID
	calls     []Call
	corrupted bool
	lock      sync.RWMutex
}

// NewSession returns an empty session at the default tempo.
func NewSession() *Session {
	return &Session{
		clips:     make(map[clip.ID]*entry),
		files:     make(map[string]float64),
		tempo:     rhythm.DefaultTempo,
		currentID: 1,
	}
}

// AddTrack appends a track and returns its index.
func (s *Session) AddTrack() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tracks++
	return s.tracks - 1
}

// SetTempo changes the session tempo used for unwarped audio placement.
func (s *Session) SetTempo(t rhythm.Tempo) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tempo = t
	return nil
}

// Tempo returns the session tempo.
func (s *Session) Tempo() rhythm.Tempo {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.tempo
}

// RegisterFile makes an audio file of the given duration available to audio clips.
func (s *Session) RegisterFile(path string, seconds float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.files[path] = seconds
}

// Place seeds a clip with explicit properties. One-shot clips are placed with their marker span, so only
// StartTime is taken from c for them.
func (s *Session) Place(track int, c clip.Clip, notes ...Note) (clip.ID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.hasTrack(track) {
		return 0, fmt.Errorf("%w: %d", ErrTrackNotFound, track)
	}
	c.Track = track
	if c.Kind == clip.KindAudio {
		if _, ok := s.files[c.FileReference]; !ok {
			return 0, fmt.Errorf("%w: %q", ErrFileNotFound, c.FileReference)
		}
	}
	if !c.Looping {
		c.EndTime = c.StartTime + (c.EndMarker-c.StartMarker)*s.scale(c)
	}
	if c.Length() <= overlapTolerance {
		return 0, ErrInvalidLength
	}
	if ids := s.overlapping(track, c.StartTime, c.EndTime); len(ids) > 0 {
		return 0, fmt.Errorf("%w: clip %d at %.3f-%.3f", ErrOverlap, ids[0], c.StartTime, c.EndTime)
	}

	c.ID = s.getNextIDForUse()
	s.clips[c.ID] = &entry{clip: c, notes: append([]Note(nil), notes...)}
	return c.ID, nil
}

// Clips returns snapshots of every clip on a track ordered by start time.
func (s *Session) Clips(track int) []clip.Clip {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]clip.Clip, 0)
	for _, e := range s.clips {
		if e.clip.Track == track {
			out = append(out, e.clip)
		}
	}
	slices.SortFunc(out, func(a, b clip.Clip) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})
	return out
}

// Clip returns a snapshot of a single clip.
func (s *Session) Clip(id clip.ID) (clip.Clip, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	e, ok := s.clips[id]
	if !ok {
		return clip.Clip{}, false
	}
	return e.clip, true
}

// Calls returns the primitive calls made so far.
func (s *Session) Calls() []Call {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]Call(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Session) ResetCalls() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls = nil
}

// Corrupted reports whether a duplicate has ever been placed over an existing clip.
func (s *Session) Corrupted() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.corrupted
}

// HasTrack reports whether the track index exists.
func (s *Session) HasTrack(track int) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.hasTrack(track)
}

// CreateClip places an empty looping note clip.
func (s *Session) CreateClip(track int, position, length float64) (clip.ID, error) {
	return s.createNoteClip("create", track, position, length)
}

// CreateEmptyFiller places an empty clip. Its only purpose is the side effect on the clips it covers.
func (s *Session) CreateEmptyFiller(track int, position, length float64) (clip.ID, error) {
	return s.createNoteClip("filler", track, position, length)
}

// CreateAudioClip places a warped one-shot clip playing the whole file.
func (s *Session) CreateAudioClip(track int, file string, position float64) (clip.ID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.hasTrack(track) {
		return 0, fmt.Errorf("%w: %d", ErrTrackNotFound, track)
	}
	seconds, ok := s.files[file]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFileNotFound, file)
	}
	beats := s.tempo.SecondsToBeats(seconds)
	if beats <= overlapTolerance {
		return 0, ErrInvalidLength
	}

	c := clip.Clip{
		Track:         track,
		StartTime:     position,
		EndTime:       position + beats,
		LoopStart:     0,
		LoopEnd:       beats,
		StartMarker:   0,
		EndMarker:     beats,
		Kind:          clip.KindAudio,
		Warped:        true,
		FileReference: file,
	}
	id := s.insert(c, nil)
	s.record("create_audio", track, id, c.StartTime, c.EndTime)
	return id, nil
}

// DuplicateClipToPosition copies a clip to position on the same track. Looping clips keep their placed
// length; one-shot clips are placed with their current marker span.
func (s *Session) DuplicateClipToPosition(track int, id clip.ID, position float64) (clip.ID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	src, err := s.lookup(track, id)
	if err != nil {
		return 0, err
	}

	length := src.clip.Length()
	if !src.clip.Looping {
		length = (src.clip.EndMarker - src.clip.StartMarker) * s.scale(src.clip)
	}
	if length <= overlapTolerance {
		return 0, ErrInvalidLength
	}

	if ids := s.overlapping(track, position, position+length); len(ids) > 0 {
		s.corrupted = true
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"track": track, "source": id, "position": position, "occupied_by": ids,
		}).Error("duplicate placed over an existing clip, arrangement is now corrupt")
		return 0, fmt.Errorf("%w: %.3f-%.3f occupied by %v", ErrOverlapDefect, position, position+length, ids)
	}

	c := src.clip
	c.StartTime = position
	c.EndTime = position + length
	newID := s.insertNoEnforce(c, append([]Note(nil), src.notes...))
	s.record("duplicate", track, newID, c.StartTime, c.EndTime)
	return newID, nil
}

// DeleteClip removes a clip from its track.
func (s *Session) DeleteClip(track int, id clip.ID) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, err := s.lookup(track, id)
	if err != nil {
		return err
	}
	delete(s.clips, id)
	s.record("delete", track, id, e.clip.StartTime, e.clip.EndTime)
	return nil
}

// GetOverlappingClipIDs returns the clips intersecting [start, end) ordered by start time.
func (s *Session) GetOverlappingClipIDs(track int, start, end float64) ([]clip.ID, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if !s.hasTrack(track) {
		return nil, fmt.Errorf("%w: %d", ErrTrackNotFound, track)
	}
	return s.overlapping(track, start, end), nil
}

// GetContentExtent returns the latest note end of a note clip or the file boundary of an audio clip, in the
// clip's content units.
func (s *Session) GetContentExtent(id clip.ID) (float64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok := s.clips[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	if e.clip.Kind == clip.KindAudio {
		return s.boundary(e.clip), nil
	}
	extent := 0.0
	for _, n := range e.notes {
		extent = math.Max(extent, n.Start+n.Length)
	}
	return extent, nil
}

func (s *Session) createNoteClip(op string, track int, position, length float64) (clip.ID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.hasTrack(track) {
		return 0, fmt.Errorf("%w: %d", ErrTrackNotFound, track)
	}
	if length <= overlapTolerance {
		return 0, ErrInvalidLength
	}
	c := clip.Clip{
		Track:       track,
		StartTime:   position,
		EndTime:     position + length,
		LoopStart:   0,
		LoopEnd:     length,
		StartMarker: 0,
		EndMarker:   length,
		Looping:     true,
		Kind:        clip.KindNote,
	}
	id := s.insert(c, nil)
	s.record(op, track, id, c.StartTime, c.EndTime)
	return id, nil
}

// insert places c after making room for it the way the host does: covered clips are removed, a clip starting
// earlier loses its tail, a clip running past the end loses its head.
func (s *Session) insert(c clip.Clip, notes []Note) clip.ID {
	for _, otherID := range s.overlapping(c.Track, c.StartTime, c.EndTime) {
		other := &s.clips[otherID].clip
		switch {
		case other.StartTime >= c.StartTime && other.EndTime <= c.EndTime:
			delete(s.clips, otherID)
		case other.StartTime < c.StartTime:
			s.trimTail(other, c.StartTime)
		default:
			s.trimHead(other, c.EndTime)
		}
	}
	return s.insertNoEnforce(c, notes)
}

func (s *Session) insertNoEnforce(c clip.Clip, notes []Note) clip.ID {
	c.ID = s.getNextIDForUse()
	s.clips[c.ID] = &entry{clip: c, notes: notes}
	return c.ID
}

func (s *Session) trimTail(c *clip.Clip, newEnd float64) {
	c.EndTime = newEnd
	if !c.Looping {
		c.EndMarker = c.StartMarker + (c.EndTime-c.StartTime)/s.scale(*c)
	}
}

func (s *Session) trimHead(c *clip.Clip, newStart float64) {
	delta := (newStart - c.StartTime) / s.scale(*c)
	c.StartTime = newStart
	if c.Looping && c.StartMarker >= c.LoopStart {
		c.StartMarker = c.LoopStart + clip.Wrap(c.StartMarker-c.LoopStart+delta, c.LoopEnd-c.LoopStart)
		return
	}
	c.StartMarker += delta
}

// scale is the number of beats one content unit occupies on the timeline.
func (s *Session) scale(c clip.Clip) float64 {
	if c.Kind == clip.KindAudio && !c.Warped {
		return s.tempo.BeatsPerSecond()
	}
	return 1
}

// boundary is the end of an audio clip's file in content units.
func (s *Session) boundary(c clip.Clip) float64 {
	seconds := s.files[c.FileReference]
	if c.Warped {
		return s.tempo.SecondsToBeats(seconds)
	}
	return seconds
}

func (s *Session) overlapping(track int, start, end float64) []clip.ID {
	matches := make([]clip.Clip, 0)
	for _, e := range s.clips {
		if e.clip.Track == track && e.clip.Overlaps(start, end, overlapTolerance) {
			matches = append(matches, e.clip)
		}
	}
	slices.SortFunc(matches, func(a, b clip.Clip) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})
	ids := make([]clip.ID, len(matches))
	for i := range matches {
		ids[i] = matches[i].ID
	}
	return ids
}

func (s *Session) lookup(track int, id clip.ID) (*entry, error) {
	if !s.hasTrack(track) {
		return nil, fmt.Errorf("%w: %d", ErrTrackNotFound, track)
	}
	e, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	if e.clip.Track != track {
		return nil, fmt.Errorf("%w: clip %d is on track %d, not %d", ErrWrongTrack, id, e.clip.Track, track)
	}
	return e, nil
}

func (s *Session) hasTrack(track int) bool {
	return track >= 0 && track < s.tracks
}

func (s *Session) getNextIDForUse() clip.ID {
	id := s.currentID
	s.currentID++
	return id
}

func (s *Session) record(op string, track int, id clip.ID, start, end float64) {
	s.calls = append(s.calls, Call{Op: op, Track: track, ID: id, Start: start, End: end})
}
