package tiling

import (
	"fmt"
	"math"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/logger"
	"github.com/sirupsen/logrus"
)

// Tile is one clip placed to cover part of an extended range.
type Tile struct {
	ID        clip.ID
	StartTime float64
	EndTime   float64

	// ContentOffset is how far into the source's content window the tile starts playing
	ContentOffset float64

	// ContentWindow is the content the tile plays. For a looping tile that wraps, End runs past the loop end.
	ContentWindow clip.ContentWindow

	// Partial is set on a tile shorter than the repeating unit
	Partial bool
}

// Length returns the tile's placed length in beats.
func (t Tile) Length() float64 {
	return t.EndTime - t.StartTime
}

// Tile covers [position, position+totalLength) with copies of source. Each copy is tileLength beats long
// (or source's placed length, if that is shorter) and continues the content where the previous one stopped,
// starting startOffset content units into source's content window and wrapping at its end. A final partial
// tile takes whatever does not divide evenly.
func (e *Engine) Tile(track int, source clip.ID, position, totalLength, startOffset, tileLength float64) ([]Tile, error) {
	if totalLength < 0 || math.IsNaN(totalLength) {
		return nil, fmt.Errorf("%w: total length %v", ErrInvalidRequest, totalLength)
	}
	if tileLength <= e.epsilon {
		return nil, fmt.Errorf("%w: tile length %v", ErrInvalidRequest, tileLength)
	}

	src, err := e.read(track, source)
	if err != nil {
		return nil, err
	}
	contentLength := src.ContentWindow().Length()
	if contentLength <= e.epsilon {
		return nil, fmt.Errorf("%w: clip %d has an empty content window", ErrInvalidRequest, source)
	}

	logger := logger.GetProjectLogger()

	unit := tileLength
	if src.Length() < unit-e.epsilon {
		logger.WithFields(logrus.Fields{
			"clip": source, "tile_length": tileLength, "placed_length": src.Length(),
		}).Debug("source is shorter than the tile length, tiling with its placed length")
		unit = src.Length()
	}

	fullTiles := int(math.Floor((totalLength + e.epsilon) / unit))
	remainder := totalLength - float64(fullTiles)*unit
	if remainder < e.epsilon {
		remainder = 0
	}

	logger.WithFields(logrus.Fields{
		"track": track, "clip": source, "position": position, "total": totalLength,
		"unit": unit, "full_tiles": fullTiles, "remainder": remainder,
	}).Debug("tiling")

	tiles := make([]Tile, 0, fullTiles+1)
	for i := 0; i < fullTiles; i++ {
		pos := position + float64(i)*unit
		offset := e.wrapOffset(startOffset+float64(i)*unit, contentLength)

		var t Tile
		if src.Length() > unit+e.epsilon {
			// a straight duplicate would spill past this tile's slot
			t, err = e.CreatePartialTile(track, source, pos, unit, offset)
			t.Partial = false
		} else {
			t, err = e.placeFullTile(track, src, pos, unit, offset)
		}
		if err != nil {
			return tiles, fmt.Errorf("placing tile %d of clip %d at %.3f: %w", i, source, pos, err)
		}
		tiles = append(tiles, t)
	}

	if remainder > 0 {
		pos := position + float64(fullTiles)*unit
		offset := e.wrapOffset(startOffset+float64(fullTiles)*unit, contentLength)
		t, err := e.CreatePartialTile(track, source, pos, remainder, offset)
		if err != nil {
			return tiles, fmt.Errorf("placing partial tile of clip %d at %.3f: %w", source, pos, err)
		}
		tiles = append(tiles, t)
	}

	if err := e.verifyCoverage(tiles, position, totalLength); err != nil {
		return tiles, err
	}
	return tiles, nil
}

func (e *Engine) placeFullTile(track int, src clip.Clip, position, unit, offset float64) (Tile, error) {
	id, err := e.duplicate(track, src.ID, position, src.Length())
	if err != nil {
		return Tile{}, err
	}
	if err := e.setContentStart(id, src, offset, unit); err != nil {
		return Tile{}, err
	}
	return e.describeTile(track, id, src, offset, false)
}

// wrapOffset folds an offset into the content window, snapping to the window start when it lands within
// epsilon of the window end.
func (e *Engine) wrapOffset(offset, contentLength float64) float64 {
	w := clip.Wrap(offset, contentLength)
	if contentLength-w <= e.epsilon {
		return 0
	}
	return w
}

func (e *Engine) describeTile(track int, id clip.ID, src clip.Clip, offset float64, partial bool) (Tile, error) {
	c, err := e.read(track, id)
	if err != nil {
		return Tile{}, err
	}
	start := src.ContentWindow().Start + offset
	return Tile{
		ID:            id,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
		ContentOffset: offset,
		ContentWindow: clip.ContentWindow{Start: start, End: start + c.Length()/beatsPerUnit(src)},
		Partial:       partial,
	}, nil
}

func (e *Engine) verifyCoverage(tiles []Tile, position, totalLength float64) error {
	cursor := position
	for _, t := range tiles {
		if !clip.NearlyEqual(t.StartTime, cursor, e.epsilon) {
			return fmt.Errorf("%w: tile %d starts at %.4f, expected %.4f", ErrInconsistent, t.ID, t.StartTime, cursor)
		}
		cursor = t.EndTime
	}
	if !clip.NearlyEqual(cursor, position+totalLength, e.epsilon) {
		return fmt.Errorf("%w: tiles end at %.4f, expected %.4f", ErrInconsistent, cursor, position+totalLength)
	}
	return nil
}
