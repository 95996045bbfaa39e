package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/cliptile/clip"
)

const (
	progressFullChar  = "█"
	progressEmptyChar = "░"

	achievementWidth = 20
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

// Options control how a track is drawn.
type Options struct {
	// BeatsPerChar is how many beats one character of the bar covers
	BeatsPerChar float64

	// Color enables 24-bit terminal colors
	Color bool
}

// DefaultOptions draws one character per beat in color.
func DefaultOptions() Options {
	return Options{BeatsPerChar: 1, Color: true}
}

// ClipColor returns a stable color for a clip id, spreading consecutive ids around the hue wheel.
func ClipColor(id clip.ID) colorful.Color {
	hue := math.Mod(float64(id)*137.508, 360)
	return colorful.Hsv(hue, 0.55, 0.95)
}

// Track writes one line per clip: its id, placement, content window, and a bar over the timeline.
func Track(w io.Writer, name string, clips []clip.Clip, opts Options) error {
	if opts.BeatsPerChar <= 0 {
		opts.BeatsPerChar = 1
	}

	if _, err := fmt.Fprintf(w, "%s\n", name); err != nil {
		return err
	}
	for _, c := range clips {
		window := c.ContentWindow()
		label := fmt.Sprintf("  #%-4d %8.3f-%-8.3f %-5s window %.3f-%.3f", c.ID, c.StartTime, c.EndTime, c.Kind, window.Start, window.End)
		if c.Looping {
			label += " loop"
		}
		if _, err := fmt.Fprintf(w, "%-64s %s\n", label, bar(c, opts)); err != nil {
			return err
		}
	}
	return nil
}

func bar(c clip.Clip, opts Options) string {
	lead := int(math.Floor(c.StartTime / opts.BeatsPerChar))
	width := int(math.Max(1, math.Round(c.Length()/opts.BeatsPerChar)))

	filled := strings.Repeat(progressFullChar, width)
	if opts.Color {
		r, g, b := ClipColor(c.ID).RGB255()
		filled = fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, filled)
	}
	return strings.Repeat(progressEmptyChar, lead) + filled
}

// Heading formats a section title.
func Heading(title string, opts Options) string {
	if !opts.Color {
		return "== " + title
	}
	return headingStyle.Render("== " + title)
}

// Achievement draws how much of a requested length a resize reached.
func Achievement(requested, achieved float64, opts Options) string {
	ratio := 0.0
	if requested > 0 {
		ratio = math.Max(0, math.Min(1, achieved/requested))
	}

	if !opts.Color {
		full := int(math.Round(ratio * achievementWidth))
		return strings.Repeat(progressFullChar, full) + strings.Repeat(progressEmptyChar, achievementWidth-full)
	}

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(achievementWidth),
		progress.WithoutPercentage(),
	)
	return p.ViewAs(ratio)
}
