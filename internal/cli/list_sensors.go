package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listSensorsCategory string

var listSensorsCmd = &cobra.Command{
	Use:   "list-sensors",
	Short: "List the sensor catalog",
	Long:  `Lists every sensor grouped by category, with its unit and operating range.`,
	RunE:  runListSensors,
}

func init() {
	listSensorsCmd.Flags().StringVar(&listSensorsCategory, "category", "", "Only show one category (e.g. Engine)")
}

func runListSensors(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	found := false
	for _, group := range cat.ByCategory() {
		if listSensorsCategory != "" && !strings.EqualFold(group.Category, listSensorsCategory) {
			continue
		}
		found = true

		fmt.Fprintf(out, "%s (%d)\n", group.Category, len(group.Sensors))
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, s := range group.Sensors {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%g..%g\toptimal %g\n", s.ID, s.Name, s.Unit, s.Min, s.Max, s.Optimal)
		}
		tw.Flush()
		fmt.Fprintln(out)
	}

	if !found {
		return fmt.Errorf("unknown category: %s", listSensorsCategory)
	}
	return nil
}
