package rhythm

import (
	"fmt"
	"math"
)

// DefaultTempo is the tempo a fresh session starts at.
const DefaultTempo Tempo = 120.0

// Tempo is a track tempo in beats per minute.
type Tempo float64

// BeatsPerSecond returns how many beats elapse per second of real time.
func (t Tempo) BeatsPerSecond() float64 {
	return float64(t) / 60.0
}

// BeatsToSeconds converts a beat count to real time.
func (t Tempo) BeatsToSeconds(beats float64) float64 {
	return beatsToMilliseconds(beats, float64(t)) / 1000.0
}

// SecondsToBeats converts real time to a beat count.
func (t Tempo) SecondsToBeats(seconds float64) float64 {
	return seconds * t.BeatsPerSecond()
}

// Validate rejects tempos that would make conversions meaningless.
func (t Tempo) Validate() error {
	if t <= 0 || math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
		return fmt.Errorf("tempo must be a positive number of beats per minute, got %v", float64(t))
	}
	return nil
}

// PlacementRatio derives the beats-per-second ratio of a clip that plays contentSeconds of audio over
// placedBeats of timeline.
func PlacementRatio(placedBeats, contentSeconds float64) (float64, error) {
	if contentSeconds <= 0 || placedBeats <= 0 {
		return 0, fmt.Errorf("cannot derive a beats-per-second ratio from %v beats over %v seconds", placedBeats, contentSeconds)
	}
	return placedBeats / contentSeconds, nil
}

// beatsToMilliseconds calculates milliseconds for given beats and tempo
func beatsToMilliseconds(beats float64, tempo float64) float64 {
	return (60000.0 / tempo) * beats
}
