package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
)

const barWidth = 12

func renderBar(score float64, width int) string {
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// writeTable prints one row per point. The bar shows where the first column's
// sensor sits inside its operating range.
func writeTable(out io.Writer, series *models.Series, sensors []catalog.Sensor) error {
	fmt.Fprintf(out, "run %s  schedule %s  %s\n\n", series.RunID, series.Schedule, series.Range)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := []string{"POS", "TIME", "MODE"}
	for _, s := range sensors {
		header = append(header, fmt.Sprintf("%s (%s)", s.ID, s.Unit))
	}
	if len(sensors) > 0 {
		header = append(header, "")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, p := range series.Points {
		row := []string{fmt.Sprintf("%d", p.TimePercent), p.FormattedTime, p.Mode}
		for _, s := range sensors {
			row = append(row, fmt.Sprintf("%.2f", p.Values[s.ID]))
		}
		if len(sensors) > 0 {
			first := sensors[0]
			score := 0.0
			if span := first.Span(); span > 0 {
				score = (p.Values[first.ID] - first.Min) / span
			}
			row = append(row, renderBar(score, barWidth))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	return tw.Flush()
}
