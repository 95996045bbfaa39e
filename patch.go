package main

import (
	"fmt"
	"io"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/config"
	"github.com/robmorgan/cliptile/host"
	"github.com/robmorgan/cliptile/media"
	"github.com/robmorgan/cliptile/render"
	"github.com/robmorgan/cliptile/rhythm"
	"github.com/robmorgan/cliptile/tiling"
)

// PatchedTrack is a seeded track and the ids its named clips received.
type PatchedTrack struct {
	Name  string
	Index int
	Clips map[string]clip.ID
}

// Patched is an arrangement loaded into a simulated host.
type Patched struct {
	Session  *host.Session
	Tracks   []PatchedTrack
	Requests []tiling.Request
}

// PatchArrangement seeds a session with every track and clip of arr and resolves its resizes to requests.
func PatchArrangement(arr *config.Arrangement) (*Patched, error) {
	session := host.NewSession()
	if arr.Tempo != 0 {
		if err := session.SetTempo(rhythm.Tempo(arr.Tempo)); err != nil {
			return nil, err
		}
	}

	for _, f := range arr.Files {
		seconds := f.Seconds
		if seconds == 0 {
			var err error
			if seconds, err = media.AudioDuration(f.Path); err != nil {
				return nil, fmt.Errorf("file %s has no length and could not be probed: %w", f.Path, err)
			}
		}
		session.RegisterFile(f.Path, seconds)
	}

	patched := &Patched{Session: session}
	byName := make(map[string]PatchedTrack)
	for _, t := range arr.Tracks {
		pt := PatchedTrack{Name: t.Name, Index: session.AddTrack(), Clips: make(map[string]clip.ID)}
		for _, pc := range t.Clips {
			id, err := patchClip(session, pt.Index, pc)
			if err != nil {
				return nil, fmt.Errorf("patching clip %s on track %s: %w", pc.Name, t.Name, err)
			}
			pt.Clips[pc.Name] = id
		}
		patched.Tracks = append(patched.Tracks, pt)
		byName[t.Name] = pt
	}

	for _, r := range arr.Resizes {
		pt := byName[r.Track]
		patched.Requests = append(patched.Requests, tiling.Request{
			Track:  pt.Index,
			Clip:   pt.Clips[r.Clip],
			Length: r.Length,
		})
	}
	return patched, nil
}

func patchClip(session *host.Session, track int, pc config.PatchedClip) (clip.ID, error) {
	c := clip.Clip{
		StartTime:     pc.Start,
		EndTime:       pc.End,
		LoopStart:     pc.LoopStart,
		LoopEnd:       pc.LoopEnd,
		StartMarker:   pc.StartMarker,
		EndMarker:     pc.EndMarker,
		Looping:       pc.Looping,
		Warped:        pc.Warped,
		FileReference: pc.File,
	}
	if pc.Kind == "audio" {
		c.Kind = clip.KindAudio
	}

	notes := make([]host.Note, 0, len(pc.Notes))
	for _, n := range pc.Notes {
		notes = append(notes, host.Note{Start: n.Start, Length: n.Length})
	}
	if pc.MIDIFile != "" {
		extent, err := media.NoteExtent(pc.MIDIFile)
		if err != nil {
			return 0, err
		}
		// only the extent matters to the engine, so one note spanning the file stands in for its contents
		notes = append(notes, host.Note{Start: 0, Length: extent})
	}

	return session.Place(track, c, notes...)
}

// Print draws every track under a heading.
func (p *Patched) Print(w io.Writer, heading string, opts render.Options) error {
	if _, err := fmt.Fprintln(w, render.Heading(heading, opts)); err != nil {
		return err
	}
	for _, t := range p.Tracks {
		if err := render.Track(w, t.Name, p.Session.Clips(t.Index), opts); err != nil {
			return err
		}
	}
	return nil
}
