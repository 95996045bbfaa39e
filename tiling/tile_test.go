package tiling

import (
	"math"
	"testing"

	"github.com/robmorgan/cliptile/clip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileFullAndPartial(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeLooping(t, s, track, 0, 4, 0, 4, 0)

	tiles, err := e.Tile(track, id, 4, 6, 0, 4)
	require.NoError(t, err)
	require.Len(t, tiles, 2)

	assert.Equal(t, 4.0, tiles[0].StartTime)
	assert.Equal(t, 8.0, tiles[0].EndTime)
	assert.False(t, tiles[0].Partial)
	assert.Equal(t, clip.ContentWindow{Start: 0, End: 4}, tiles[0].ContentWindow)

	assert.Equal(t, 8.0, tiles[1].StartTime)
	assert.Equal(t, 10.0, tiles[1].EndTime)
	assert.True(t, tiles[1].Partial)
	assert.Equal(t, 0.0, tiles[1].ContentOffset)
	assert.Equal(t, clip.ContentWindow{Start: 0, End: 2}, tiles[1].ContentWindow)

	assert.Equal(t, []span{{0, 4}, {4, 8}, {8, 10}}, spans(s, track))
	requireSettled(t, s, track)
}

func TestTileContinuesContent(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeLooping(t, s, track, 0, 3, 0, 8, 0)

	tiles, err := e.Tile(track, id, 3, 5, 3, 8)
	require.NoError(t, err)
	require.Len(t, tiles, 2)

	// the source is shorter than the loop, so it is the repeating unit
	assert.Equal(t, 3.0, tiles[0].Length())
	assert.False(t, tiles[0].Partial)
	assert.Equal(t, 2.0, tiles[1].Length())
	assert.True(t, tiles[1].Partial)

	for _, tile := range tiles {
		want := clip.Wrap(3+tile.StartTime-3, 8)
		assert.InDelta(t, want, tile.ContentOffset, 1e-9)
		assert.InDelta(t, want, getClip(t, s, tile.ID).StartMarker, 1e-9)
	}
	requireSettled(t, s, track)
}

func TestTileRemainderWithinEpsilon(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeLooping(t, s, track, 0, 4, 0, 4, 0)

	tiles, err := e.Tile(track, id, 4, 8.0005, 0, 4)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	for _, tile := range tiles {
		assert.False(t, tile.Partial)
	}
	requireSettled(t, s, track)
}

func TestTileNothingToCover(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeLooping(t, s, track, 0, 4, 0, 4, 0)

	tiles, err := e.Tile(track, id, 4, 0, 0, 4)
	require.NoError(t, err)
	assert.Empty(t, tiles)
	assert.Empty(t, s.Calls())
}

func TestTileRejectsBadLengths(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeLooping(t, s, track, 0, 4, 0, 4, 0)

	_, err := e.Tile(track, id, 4, -1, 0, 4)
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = e.Tile(track, id, 4, math.NaN(), 0, 4)
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = e.Tile(track, id, 4, 8, 0, 0)
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, s.Calls())
}

func TestTileLongSourceIsStaged(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeLooping(t, s, track, 0, 6, 0, 4, 0)

	tiles, err := e.Tile(track, id, 6, 4, 2, 4)
	require.NoError(t, err)
	require.Len(t, tiles, 1)

	assert.Equal(t, 6.0, tiles[0].StartTime)
	assert.Equal(t, 10.0, tiles[0].EndTime)
	assert.False(t, tiles[0].Partial)
	assert.Equal(t, 2.0, getClip(t, s, tiles[0].ID).StartMarker)
	assert.Equal(t, []span{{0, 6}, {6, 10}}, spans(s, track))
	requireSettled(t, s, track)
}

func TestWrapOffset(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t)

	assert.Equal(t, 0.0, e.wrapOffset(3.9995, 4))
	assert.Equal(t, 0.0, e.wrapOffset(4, 4))
	assert.Equal(t, 1.0, e.wrapOffset(5, 4))
	assert.Equal(t, 3.0, e.wrapOffset(-1, 4))
}

func TestCreatePartialTileOneShot(t *testing.T) {
	t.Parallel()

	e, s, track := newTestEngine(t)
	id := placeOneShotNote(t, s, track, 0, 0, 6)

	tile, err := e.CreatePartialTile(track, id, 6, 4, 1)
	require.NoError(t, err)

	assert.True(t, tile.Partial)
	assert.Equal(t, clip.ContentWindow{Start: 1, End: 5}, tile.ContentWindow)

	c := getClip(t, s, tile.ID)
	assert.Equal(t, 6.0, c.StartTime)
	assert.Equal(t, 10.0, c.EndTime)
	assert.Equal(t, 1.0, c.StartMarker)
	assert.Equal(t, 5.0, c.EndMarker)
	assert.False(t, c.Looping)
	requireSettled(t, s, track)
}
