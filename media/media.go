// Package media reads content lengths out of files: the duration of a WAV file and the latest note end of a
// Standard MIDI File.
package media

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2/smf"
)

// AudioDuration returns the length of a WAV file in seconds.
func AudioDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("invalid WAV file: %s", path)
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("reading duration of %s: %w", path, err)
	}
	return d.Seconds(), nil
}

// NoteExtent returns, in beats, where the last note of a Standard MIDI File ends. Notes still held when a
// track ends are taken to end there.
func NoteExtent(path string) (float64, error) {
	mid, err := smf.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading MIDI file %s: %w", path, err)
	}
	return noteExtent(mid)
}

func noteExtent(mid *smf.SMF) (float64, error) {
	ticks, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return 0, fmt.Errorf("MIDI file does not use metric ticks")
	}

	var last int64
	var ch, key, vel uint8
	for _, track := range mid.Tracks {
		var now int64
		held := 0
		for _, ev := range track {
			now += int64(ev.Delta)
			switch {
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				held++
			case ev.Message.GetNoteEnd(&ch, &key):
				if held > 0 {
					held--
				}
				if now > last {
					last = now
				}
			}
		}
		if held > 0 && now > last {
			last = now
		}
	}
	return float64(last) / float64(uint16(ticks)), nil
}
