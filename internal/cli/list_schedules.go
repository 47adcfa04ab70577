package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listSchedulesCmd = &cobra.Command{
	Use:   "list-schedules",
	Short: "List operating-mode schedules",
	Long:  `Lists the schedule tiers in selection order.`,
	RunE:  runListSchedules,
}

func runListSchedules(cmd *cobra.Command, args []string) error {
	registry, err := loadSchedules()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available schedules:")
	fmt.Fprintln(out)
	for _, s := range registry.List() {
		limit := "unbounded"
		if !s.Unbounded() {
			limit = fmt.Sprintf("<= %gh", s.MaxHours)
		}
		fmt.Fprintf(out, "  %-10s %-10s %s\n", s.Name, limit, strings.Join(s.Modes(), ", "))
		if s.Description != "" {
			fmt.Fprintf(out, "             %s\n", s.Description)
		}
	}
	fmt.Fprintln(out)
	return nil
}
