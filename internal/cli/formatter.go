package cli

import (
	"strings"

	"github.com/armadafleet/fleetsynth/internal/models"
)

const timelineWidth = 50

var modeGlyphs = map[string]rune{
	"Transit":       '─',
	"DP Operations": '█',
	"Anchor":        '▒',
}

func modeGlyph(mode string) rune {
	if g, ok := modeGlyphs[mode]; ok {
		return g
	}
	return '·'
}

// renderTimeline draws the intervals of a schedule across width cells of the
// 0-100 axis.
func renderTimeline(intervals []models.Interval, width int) string {
	if width <= 0 {
		return ""
	}
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
	}
	for _, iv := range intervals {
		start := int(iv.Start / 100 * float64(width))
		end := int(iv.End / 100 * float64(width))
		if end > width {
			end = width
		}
		if start < 0 {
			start = 0
		}
		for i := start; i < end; i++ {
			cells[i] = modeGlyph(iv.Mode)
		}
	}
	return "|" + string(cells) + "|"
}

// renderSpan is a single bar showing [start, end) of the 0-100 axis
func renderSpan(start, end float64, width int) string {
	from := int(start / 100 * float64(width))
	to := int(end / 100 * float64(width))
	if to > width {
		to = width
	}
	if from > to {
		from = to
	}
	return strings.Repeat(" ", from) + strings.Repeat("█", to-from) + strings.Repeat(" ", width-to)
}
