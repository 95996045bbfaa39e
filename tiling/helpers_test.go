package tiling

import (
	"testing"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/config"
	"github.com/robmorgan/cliptile/host"
	"github.com/stretchr/testify/require"
)

const holdingFloor = 1000.0

type span struct {
	Start float64
	End   float64
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *host.Session, int) {
	t.Helper()
	s := host.NewSession()
	return New(s, config.NewTilerConfig(), opts...), s, s.AddTrack()
}

func placeLooping(t *testing.T, s *host.Session, track int, start, end, loopStart, loopEnd, startMarker float64) clip.ID {
	t.Helper()
	id, err := s.Place(track, clip.Clip{
		StartTime:   start,
		EndTime:     end,
		LoopStart:   loopStart,
		LoopEnd:     loopEnd,
		StartMarker: startMarker,
		EndMarker:   loopEnd,
		Looping:     true,
		Kind:        clip.KindNote,
	})
	require.NoError(t, err)
	return id
}

func placeOneShotNote(t *testing.T, s *host.Session, track int, start, startMarker, endMarker float64, notes ...host.Note) clip.ID {
	t.Helper()
	id, err := s.Place(track, clip.Clip{
		StartTime:   start,
		LoopStart:   startMarker,
		LoopEnd:     endMarker,
		StartMarker: startMarker,
		EndMarker:   endMarker,
		Kind:        clip.KindNote,
	}, notes...)
	require.NoError(t, err)
	return id
}

func placeAudio(t *testing.T, s *host.Session, track int, file string, warped bool, start, startMarker, endMarker float64) clip.ID {
	t.Helper()
	id, err := s.Place(track, clip.Clip{
		StartTime:     start,
		LoopStart:     startMarker,
		LoopEnd:       endMarker,
		StartMarker:   startMarker,
		EndMarker:     endMarker,
		Kind:          clip.KindAudio,
		Warped:        warped,
		FileReference: file,
	})
	require.NoError(t, err)
	return id
}

func spans(s *host.Session, track int) []span {
	out := []span{}
	for _, c := range s.Clips(track) {
		out = append(out, span{c.StartTime, c.EndTime})
	}
	return out
}

func ops(s *host.Session, op string) []host.Call {
	out := []host.Call{}
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func getClip(t *testing.T, s *host.Session, id clip.ID) clip.Clip {
	t.Helper()
	c, ok := s.Clip(id)
	require.True(t, ok, "clip %d is not placed", id)
	return c
}

// requireSettled checks that nothing was left in the holding region and the session never saw an overlap.
func requireSettled(t *testing.T, s *host.Session, track int) {
	t.Helper()
	require.False(t, s.Corrupted())
	for _, c := range s.Clips(track) {
		require.Less(t, c.EndTime, holdingFloor, "clip %d left in the holding region", c.ID)
	}
}
