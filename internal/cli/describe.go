package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe-schedule <name>",
	Short: "Describe an operating-mode schedule in detail",
	Long:  `Shows the duration tier, intervals and mode timeline of a schedule.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	registry, err := loadSchedules()
	if err != nil {
		return err
	}

	sched, err := registry.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Schedule: %s\n", sched.Name)
	fmt.Fprintf(out, "Description: %s\n", sched.Description)
	if sched.Unbounded() {
		fmt.Fprintf(out, "Applies to: ranges longer than every other tier\n\n")
	} else {
		fmt.Fprintf(out, "Applies to: ranges up to %gh\n\n", sched.MaxHours)
	}

	fmt.Fprintln(out, "Intervals:")
	for i, iv := range sched.Intervals {
		fmt.Fprintf(out, "  %d. %-14s %5.1f - %5.1f  %s  %s\n",
			i+1, iv.Mode, iv.Start, iv.End, renderSpan(iv.Start, iv.End, timelineWidth), iv.Color)
	}

	fmt.Fprintln(out, "\nTimeline:")
	fmt.Fprintf(out, "  %s\n", renderTimeline(sched.Intervals, timelineWidth))
	fmt.Fprintf(out, "  0%s100\n", strings.Repeat(" ", timelineWidth-1))

	fmt.Fprintln(out, "\nLegend:")
	for _, mode := range sched.Modes() {
		fmt.Fprintf(out, "  %c %s\n", modeGlyph(mode), mode)
	}
	return nil
}
