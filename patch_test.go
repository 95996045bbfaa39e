package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/robmorgan/cliptile/config"
	"github.com/robmorgan/cliptile/render"
	"github.com/robmorgan/cliptile/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchArrangement(t *testing.T) {
	t.Parallel()

	arr, err := config.LoadArrangement(filepath.Join("testdata", "arrangement.yaml"))
	require.NoError(t, err)

	patched, err := PatchArrangement(arr)
	require.NoError(t, err)

	assert.Equal(t, rhythm.Tempo(120), patched.Session.Tempo())
	require.Len(t, patched.Tracks, 3)
	assert.Equal(t, "keys", patched.Tracks[0].Name)

	keys := patched.Session.Clips(patched.Tracks[0].Index)
	require.Len(t, keys, 2)
	assert.True(t, keys[0].Looping)

	// the one-shot is placed over its marker span, not its declared end
	assert.Equal(t, 12.0, keys[1].StartTime)
	assert.Equal(t, 16.0, keys[1].EndTime)

	extent, err := patched.Session.GetContentExtent(patched.Tracks[0].Clips["stab"])
	require.NoError(t, err)
	assert.Equal(t, 6.0, extent)

	drums := patched.Session.Clips(patched.Tracks[1].Index)
	require.Len(t, drums, 1)
	assert.Equal(t, 4.0, drums[0].EndTime)

	require.Len(t, patched.Requests, 4)
	assert.Equal(t, patched.Tracks[0].Clips["riff"], patched.Requests[0].Clip)
	assert.Equal(t, 10.0, patched.Requests[0].Length)
}

func TestPatchArrangementRejectsOverlap(t *testing.T) {
	t.Parallel()

	arr, err := config.ParseArrangement([]byte(`
tracks:
  - name: a
    clips:
      - {name: x, kind: note, start: 0, end: 4, looping: true, loop_end: 4, end_marker: 4}
      - {name: y, kind: note, start: 2, end: 6, looping: true, loop_end: 4, end_marker: 4}
`))
	require.NoError(t, err)

	_, err = PatchArrangement(arr)
	assert.Error(t, err)
}

func TestPatchedPrint(t *testing.T) {
	t.Parallel()

	arr, err := config.LoadArrangement(filepath.Join("testdata", "arrangement.yaml"))
	require.NoError(t, err)
	patched, err := PatchArrangement(arr)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, patched.Print(&out, "before", render.Options{BeatsPerChar: 1}))
	assert.Contains(t, out.String(), "== before\n")
	assert.Contains(t, out.String(), "keys\n")
	assert.Contains(t, out.String(), "drums\n")
}

func TestRun(t *testing.T) {
	t.Parallel()

	journalPath := filepath.Join(t.TempDir(), "journal.db")
	err := Run(context.Background(), "", filepath.Join("testdata", "arrangement.yaml"), journalPath, false)
	require.NoError(t, err)
}
