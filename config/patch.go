package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatchedNote is a note inside a note clip, in content beats.
type PatchedNote struct {
	Start  float64 `yaml:"start"`
	Length float64 `yaml:"length"`
}

// PatchedClip describes a clip to seed into a track.
type PatchedClip struct {
	Name        string        `yaml:"name"`
	Kind        string        `yaml:"kind"` // "note" or "audio"
	Start       float64       `yaml:"start"`
	End         float64       `yaml:"end"`
	Looping     bool          `yaml:"looping"`
	Warped      bool          `yaml:"warped"`
	LoopStart   float64       `yaml:"loop_start"`
	LoopEnd     float64       `yaml:"loop_end"`
	StartMarker float64       `yaml:"start_marker"`
	EndMarker   float64       `yaml:"end_marker"`
	File        string        `yaml:"file"`
	Notes       []PatchedNote `yaml:"notes"`

	// MIDIFile reads Notes' extent from a Standard MIDI File instead
	MIDIFile string `yaml:"midi_file"`
}

// PatchedTrack is one track of an arrangement.
type PatchedTrack struct {
	Name  string        `yaml:"name"`
	Clips []PatchedClip `yaml:"clips"`
}

// PatchedFile is an audio file the arrangement references. Seconds may be left out when the path is a
// readable WAV file.
type PatchedFile struct {
	Path    string  `yaml:"path"`
	Seconds float64 `yaml:"seconds"`
}

// PatchedResize asks for the named clip to be resized to Length beats.
type PatchedResize struct {
	Track  string  `yaml:"track"`
	Clip   string  `yaml:"clip"`
	Length float64 `yaml:"length"`
}

// Arrangement is the document the CLI loads: tracks to seed and the resizes to apply.
type Arrangement struct {
	Tempo   float64         `yaml:"tempo"`
	Files   []PatchedFile   `yaml:"files"`
	Tracks  []PatchedTrack  `yaml:"tracks"`
	Resizes []PatchedResize `yaml:"resizes"`
}

// LoadArrangement reads an arrangement YAML file.
func LoadArrangement(path string) (*Arrangement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read arrangement %s: %w", path, err)
	}
	return ParseArrangement(data)
}

// ParseArrangement decodes and checks an arrangement document.
func ParseArrangement(data []byte) (*Arrangement, error) {
	arr := &Arrangement{}
	if err := yaml.Unmarshal(data, arr); err != nil {
		return nil, fmt.Errorf("failed to parse arrangement: %w", err)
	}

	trackNames := make(map[string]map[string]bool)
	for _, t := range arr.Tracks {
		if _, ok := trackNames[t.Name]; ok {
			return nil, fmt.Errorf("duplicate tracks found! name=%s", t.Name)
		}
		clipNames := make(map[string]bool)
		for _, c := range t.Clips {
			if clipNames[c.Name] {
				return nil, fmt.Errorf("duplicate clips found on track %s! name=%s", t.Name, c.Name)
			}
			if c.Kind != "note" && c.Kind != "audio" {
				return nil, fmt.Errorf("clip %s on track %s has unknown kind %q", c.Name, t.Name, c.Kind)
			}
			clipNames[c.Name] = true
		}
		trackNames[t.Name] = clipNames
	}

	for _, r := range arr.Resizes {
		clips, ok := trackNames[r.Track]
		if !ok {
			return nil, fmt.Errorf("resize references unknown track %q", r.Track)
		}
		if !clips[r.Clip] {
			return nil, fmt.Errorf("resize references unknown clip %q on track %q", r.Clip, r.Track)
		}
	}

	return arr, nil
}
