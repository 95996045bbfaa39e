package host

import (
	"testing"

	"github.com/robmorgan/cliptile/clip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopingClip(start, end float64) clip.Clip {
	return clip.Clip{
		StartTime: start,
		EndTime:   end,
		LoopStart: 0,
		LoopEnd:   end - start,
		EndMarker: end - start,
		Looping:   true,
		Kind:      clip.KindNote,
	}
}

func TestCreateTrimsCoveredClips(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	first, err := s.Place(track, loopingClip(0, 8))
	require.NoError(t, err)
	second, err := s.Place(track, loopingClip(10, 14))
	require.NoError(t, err)
	inside, err := s.Place(track, loopingClip(8, 9))
	require.NoError(t, err)

	// covers the tail of first, all of inside and the head of second
	filler, err := s.CreateEmptyFiller(track, 3, 9)
	require.NoError(t, err)

	c, ok := s.Clip(first)
	require.True(t, ok)
	assert.Equal(t, 3.0, c.EndTime)
	assert.Equal(t, 0.0, c.StartMarker)

	_, ok = s.Clip(inside)
	assert.False(t, ok)

	c, ok = s.Clip(second)
	require.True(t, ok)
	assert.Equal(t, 12.0, c.StartTime)
	assert.Equal(t, 14.0, c.EndTime)
	assert.Equal(t, 2.0, c.StartMarker)

	require.NoError(t, s.DeleteClip(track, filler))
	assert.Len(t, s.Clips(track), 2)
	assert.False(t, s.Corrupted())
}

func TestTrimHeadWrapsLoopingStartMarker(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	c := loopingClip(0, 10)
	c.LoopEnd = 4
	c.StartMarker = 3
	id, err := s.Place(track, c)
	require.NoError(t, err)

	_, err = s.CreateEmptyFiller(track, 0, 2)
	require.NoError(t, err)

	got, ok := s.Clip(id)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.StartTime)
	assert.Equal(t, 1.0, got.StartMarker)
}

func TestTrimTailMovesOneShotEndMarker(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	id, err := s.Place(track, clip.Clip{StartTime: 4, StartMarker: 1, EndMarker: 7, LoopEnd: 7, Kind: clip.KindNote})
	require.NoError(t, err)

	c, _ := s.Clip(id)
	assert.Equal(t, 10.0, c.EndTime)

	_, err = s.CreateEmptyFiller(track, 6, 4)
	require.NoError(t, err)

	c, _ = s.Clip(id)
	assert.Equal(t, 6.0, c.EndTime)
	assert.Equal(t, 3.0, c.EndMarker)
}

func TestDuplicateOntoOccupiedRangeCorrupts(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	a, err := s.Place(track, loopingClip(0, 4))
	require.NoError(t, err)
	_, err = s.Place(track, loopingClip(6, 8))
	require.NoError(t, err)

	_, err = s.DuplicateClipToPosition(track, a, 4)
	require.ErrorIs(t, err, ErrOverlapDefect)
	assert.True(t, s.Corrupted())
}

func TestDuplicateLength(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()
	s.RegisterFile("hit.wav", 3)

	looping, err := s.Place(track, loopingClip(0, 6))
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(looping, clip.PropEndMarker, 2.0))

	// unwarped: one second of audio spans two beats at 120 bpm
	audio, err := s.Place(track, clip.Clip{
		StartTime: 10, StartMarker: 0, EndMarker: 1, LoopEnd: 1, Kind: clip.KindAudio, FileReference: "hit.wav",
	})
	require.NoError(t, err)
	c, _ := s.Clip(audio)
	assert.Equal(t, 12.0, c.EndTime)
	require.NoError(t, s.SetProperty(audio, clip.PropEndMarker, 2.0))

	dupLooping, err := s.DuplicateClipToPosition(track, looping, 20)
	require.NoError(t, err)
	c, _ = s.Clip(dupLooping)
	assert.Equal(t, 26.0, c.EndTime)

	dupAudio, err := s.DuplicateClipToPosition(track, audio, 30)
	require.NoError(t, err)
	c, _ = s.Clip(dupAudio)
	assert.Equal(t, 34.0, c.EndTime)
}

func TestAudioMarkersClampToFile(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()
	s.RegisterFile("loop.wav", 4)

	id, err := s.CreateAudioClip(track, "loop.wav", 0)
	require.NoError(t, err)

	c, _ := s.Clip(id)
	assert.Equal(t, 8.0, c.EndTime)
	assert.Equal(t, 8.0, c.EndMarker)
	assert.True(t, c.Warped)

	require.NoError(t, s.SetProperty(id, clip.PropEndMarker, 20.0))
	end, err := clip.GetFloat(s, id, clip.PropEndMarker)
	require.NoError(t, err)
	assert.Equal(t, 8.0, end)

	require.NoError(t, s.SetProperty(id, clip.PropStartMarker, -3.0))
	start, err := clip.GetFloat(s, id, clip.PropStartMarker)
	require.NoError(t, err)
	assert.Equal(t, 0.0, start)

	extent, err := s.GetContentExtent(id)
	require.NoError(t, err)
	assert.Equal(t, 8.0, extent)
}

func TestPropertyRules(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	id, err := s.Place(track, clip.Clip{StartTime: 0, EndMarker: 4, LoopEnd: 4, Kind: clip.KindNote}, Note{Start: 5, Length: 1})
	require.NoError(t, err)

	require.ErrorIs(t, s.SetProperty(id, clip.PropLoopEnd, 6.0), ErrNotLooping)
	require.ErrorIs(t, s.SetProperty(id, clip.PropEndTime, 6.0), ErrReadOnlyProperty)
	require.ErrorIs(t, s.SetProperty(id, clip.Property("color"), 1.0), ErrUnknownProperty)
	require.Error(t, s.SetProperty(id, clip.PropLooping, 1.0))

	require.NoError(t, s.SetProperty(id, clip.PropLooping, true))
	require.NoError(t, s.SetProperty(id, clip.PropLoopEnd, 6.0))

	c, err := clip.ReadClip(s, track, id)
	require.NoError(t, err)
	assert.True(t, c.Looping)
	assert.Equal(t, 6.0, c.LoopEnd)
	assert.Equal(t, 4.0, c.Length())

	extent, err := s.GetContentExtent(id)
	require.NoError(t, err)
	assert.Equal(t, 6.0, extent)
}

func TestPlaceRejectsOverlap(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	_, err := s.Place(track, loopingClip(0, 4))
	require.NoError(t, err)
	_, err = s.Place(track, loopingClip(3, 6))
	require.ErrorIs(t, err, ErrOverlap)
	_, err = s.Place(track, loopingClip(4, 6))
	require.NoError(t, err)

	_, err = s.Place(7, loopingClip(0, 4))
	require.ErrorIs(t, err, ErrTrackNotFound)
	_, err = s.Place(track, clip.Clip{StartTime: 10, Kind: clip.KindAudio, EndMarker: 1, FileReference: "missing.wav"})
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestClipAddressedThroughWrongTrack(t *testing.T) {
	t.Parallel()

	s := NewSession()
	a := s.AddTrack()
	b := s.AddTrack()

	id, err := s.Place(a, loopingClip(0, 4))
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteClip(b, id), ErrWrongTrack)
	require.ErrorIs(t, s.DeleteClip(a, 99), ErrClipNotFound)
	_, err = s.DuplicateClipToPosition(b, id, 8)
	require.ErrorIs(t, err, ErrWrongTrack)
}

func TestCallLog(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	id, err := s.Place(track, loopingClip(0, 4))
	require.NoError(t, err)
	assert.Empty(t, s.Calls())

	dup, err := s.DuplicateClipToPosition(track, id, 4)
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(dup, clip.PropStartMarker, 1.0))
	filler, err := s.CreateEmptyFiller(track, 6, 2)
	require.NoError(t, err)
	require.NoError(t, s.DeleteClip(track, filler))

	ops := []string{}
	for _, c := range s.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"duplicate", "set:start_marker", "filler", "delete"}, ops)
	assert.Equal(t, Call{Op: "filler", Track: track, ID: filler, Start: 6, End: 8}, s.Calls()[2])

	s.ResetCalls()
	assert.Empty(t, s.Calls())
}

func TestOverlappingIDsAreOrdered(t *testing.T) {
	t.Parallel()

	s := NewSession()
	track := s.AddTrack()

	late, err := s.Place(track, loopingClip(8, 12))
	require.NoError(t, err)
	early, err := s.Place(track, loopingClip(0, 4))
	require.NoError(t, err)

	ids, err := s.GetOverlappingClipIDs(track, 2, 9)
	require.NoError(t, err)
	assert.Equal(t, []clip.ID{early, late}, ids)

	ids, err = s.GetOverlappingClipIDs(track, 4, 8)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
