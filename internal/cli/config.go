package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GlobalOptions are shared flags that apply across commands.
type GlobalOptions struct {
	Quiet   bool
	Verbose bool
	EnvFile string

	SchedulesDir string // extra schedule YAML, overrides built-ins by name
	CatalogPath  string // sensor catalog YAML, replaces the default catalog
}

var globalOpts = GlobalOptions{
	EnvFile: ".env",
}

// envFlags maps flag names to the environment variables that supply their
// defaults. A flag given on the command line always wins.
var envFlags = map[string]string{
	"host":      "FLEETSYNTH_HOST",
	"port":      "FLEETSYNTH_PORT",
	"schedules": "FLEETSYNTH_SCHEDULES",
	"catalog":   "FLEETSYNTH_CATALOG",
	"rate":      "FLEETSYNTH_RATE",
}

// loadEnvFile reads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing default file is fine;
// a missing file the user asked for is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvDefaults copies FLEETSYNTH_* values into flags the user did not set
func applyEnvDefaults(cmd *cobra.Command) error {
	var firstErr error
	visit := func(f *pflag.Flag) {
		key, ok := envFlags[f.Name]
		if !ok || f.Changed || firstErr != nil {
			return
		}
		value, set := os.LookupEnv(key)
		if !set || value == "" {
			return
		}
		if err := f.Value.Set(value); err != nil {
			firstErr = fmt.Errorf("invalid %s=%q: %w", key, value, err)
		}
	}
	cmd.Flags().VisitAll(visit)
	return firstErr
}

func configureLogging(opts GlobalOptions, stderr io.Writer) {
	log.SetOutput(stderr)
	log.SetFlags(log.LstdFlags)
	switch {
	case opts.Quiet:
		log.SetOutput(io.Discard)
	case opts.Verbose:
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}
}
