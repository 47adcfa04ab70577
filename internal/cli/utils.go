package cli

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/schedule"
)

func getSchedulesDir() string {
	if globalOpts.SchedulesDir != "" {
		return globalOpts.SchedulesDir
	}

	if _, err := os.Stat("schedules"); err == nil {
		return "schedules"
	}

	exe, err := os.Executable()
	if err == nil {
		dir := filepath.Join(filepath.Dir(exe), "schedules")
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return ""
}

// loadSchedules returns the built-in tiers, overridden by any YAML found in
// the schedules directory
func loadSchedules() (*schedule.Registry, error) {
	registry := schedule.NewRegistry()
	if err := registry.LoadBuiltin(); err != nil {
		return nil, fmt.Errorf("failed to load built-in schedules: %w", err)
	}

	dir := getSchedulesDir()
	if dir == "" {
		return registry, nil
	}
	if err := registry.LoadFromDir(dir); err != nil {
		return nil, fmt.Errorf("failed to load schedules from %s: %w", dir, err)
	}
	return registry, nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if globalOpts.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFromFile(globalOpts.CatalogPath)
}

// parseTickRate accepts a frequency such as "10hz" or a period such as "250ms"
func parseTickRate(rate string) (time.Duration, error) {
	rate = strings.ToLower(strings.TrimSpace(rate))

	if strings.HasSuffix(rate, "hz") {
		var hz float64
		if _, err := fmt.Sscanf(rate, "%fhz", &hz); err != nil {
			return 0, fmt.Errorf("invalid rate %q", rate)
		}
		if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
			return 0, fmt.Errorf("rate must be a positive finite frequency")
		}
		period := float64(time.Second) / hz
		if period < 1 || period > math.MaxInt64 {
			return 0, fmt.Errorf("rate %q is out of range", rate)
		}
		return time.Duration(period), nil
	}

	d, err := time.ParseDuration(rate)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q (expected e.g. 10hz or 250ms)", rate)
	}
	if d <= 0 {
		return 0, fmt.Errorf("rate must be positive")
	}
	return d, nil
}

// resolveRange turns --from/--to or --last into a date range
func resolveRange(from, to, last string, now time.Time) (models.DateRange, error) {
	if last != "" {
		if from != "" || to != "" {
			return models.DateRange{}, fmt.Errorf("--last cannot be combined with --from/--to")
		}
		return models.LastRange(now, last)
	}
	if from == "" && to == "" {
		return models.DateRange{}, fmt.Errorf("a range is required: use --from and --to, or --last")
	}
	return models.ParseDateRange(from, to)
}

// parseSensorList splits a comma-separated list, dropping blanks
func parseSensorList(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// selectCatalog narrows the catalog to the requested sensors
func selectCatalog(cat *catalog.Catalog, sensors string) (*catalog.Catalog, error) {
	ids := parseSensorList(sensors)
	if len(ids) == 0 {
		return cat, nil
	}
	filtered, err := cat.Filter(ids)
	if err != nil {
		return nil, err
	}
	return &catalog.Catalog{Sensors: filtered, Vessels: cat.Vessels}, nil
}

// resolveVessel validates a vessel ID, defaulting to the first in the fleet
func resolveVessel(cat *catalog.Catalog, id string) (catalog.Vessel, error) {
	if id != "" {
		return cat.Vessel(id)
	}
	if len(cat.Vessels) == 0 {
		return catalog.Vessel{}, fmt.Errorf("catalog has no vessels")
	}
	return cat.Vessels[0], nil
}
