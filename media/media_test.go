package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestNoteExtent(t *testing.T) {
	t.Parallel()

	mid := smf.New()
	mid.TimeFormat = smf.MetricTicks(96)

	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(96, midi.NoteOff(0, 60))
	tr.Add(96, midi.NoteOn(0, 64, 100))
	tr.Add(192, midi.NoteOff(0, 64))
	tr.Close(0)
	require.NoError(t, mid.Add(tr))

	extent, err := noteExtent(mid)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, extent, 1e-9)
}

func TestNoteExtentHeldNote(t *testing.T) {
	t.Parallel()

	mid := smf.New()
	mid.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Close(960)
	require.NoError(t, mid.Add(tr))

	extent, err := noteExtent(mid)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, extent, 1e-9)
}

func TestAudioDurationMissingFile(t *testing.T) {
	t.Parallel()

	_, err := AudioDuration("does-not-exist.wav")
	require.Error(t, err)
}
