package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fleetsynth",
	Short: "fleetsynth - synthetic vessel sensor data for fleet dashboards",
	Long: `fleetsynth generates realistic vessel sensor time series for a date range.

Each series has 101 points spread evenly across the range. Readings follow
an operating-mode schedule (Transit, DP Operations, Anchor) picked from the
range length, with a slow oscillation and random noise on top.

Series can be printed, written to files, streamed over WebSocket, SSE and
UDP, recorded and replayed, or served over an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile := cmd.Flags().Lookup("env-file")
		if err := loadEnvFile(globalOpts.EnvFile, envFile != nil && envFile.Changed); err != nil {
			return err
		}
		if err := applyEnvDefaults(cmd); err != nil {
			return err
		}
		configureLogging(globalOpts, cmd.ErrOrStderr())
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&globalOpts.Quiet, "quiet", "q", false, "Suppress log output")
	pf.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "Verbose log output with source locations")
	pf.StringVar(&globalOpts.EnvFile, "env-file", globalOpts.EnvFile, "Load FLEETSYNTH_* defaults from this file")
	pf.StringVar(&globalOpts.SchedulesDir, "schedules", "", "Directory of schedule YAML files (overrides built-ins by name)")
	pf.StringVar(&globalOpts.CatalogPath, "catalog", "", "Sensor catalog YAML (default: built-in 26-sensor catalog)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listSensorsCmd)
	rootCmd.AddCommand(listSchedulesCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}
