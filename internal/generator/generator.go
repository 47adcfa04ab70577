package generator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/schedule"
	"github.com/google/uuid"
)

const (
	defaultNoiseFraction        = 0.05
	defaultOscillationAmplitude = 0.1
)

// Generator synthesizes sensor series for date ranges
type Generator struct {
	catalog   *catalog.Catalog
	schedules *schedule.Registry
	rules     RuleTable
	config    Config

	noiseFraction float64
	oscAmplitude  float64

	mu         sync.Mutex
	rng        *rand.Rand
	customRand bool
}

// Config holds generator configuration
type Config struct {
	Seed               int64
	Vessel             string
	DisableOscillation bool
}

// Option customizes Generator creation.
type Option func(*Generator)

// WithNoiseFraction sets the noise spread as a share of each sensor's max-min span.
func WithNoiseFraction(f float64) Option {
	return func(g *Generator) {
		if f >= 0 {
			g.noiseFraction = f
		}
	}
}

// WithOscillationAmplitude sets the sine amplitude as a share of each sensor's span.
func WithOscillationAmplitude(a float64) Option {
	return func(g *Generator) {
		if a >= 0 {
			g.oscAmplitude = a
		}
	}
}

// WithRules replaces the baseline adjustment table.
func WithRules(rules RuleTable) Option {
	return func(g *Generator) {
		if rules != nil {
			g.rules = rules
		}
	}
}

// WithRand injects the random source, overriding Config.Seed. Series from such
// a generator report seed 0, since Config.Seed no longer reproduces them.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
			g.customRand = true
		}
	}
}

// NewGenerator creates a new series generator
func NewGenerator(cat *catalog.Catalog, schedules *schedule.Registry, config Config, opts ...Option) *Generator {
	g := &Generator{
		catalog:       cat,
		schedules:     schedules,
		rules:         DefaultRules(),
		config:        config,
		noiseFraction: defaultNoiseFraction,
		oscAmplitude:  defaultOscillationAmplitude,
		rng:           rand.New(rand.NewSource(config.Seed)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the 101-point series for r. Each call draws fresh noise;
// timestamps and modes depend only on r.
func (g *Generator) Generate(r models.DateRange) (*models.Series, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	sched, err := g.SelectSchedule(r)
	if err != nil {
		return nil, err
	}

	fromMs := r.From.UnixMilli()
	totalMs := r.DurationMillis()
	sensors := g.catalog.Sensors

	g.mu.Lock()
	defer g.mu.Unlock()

	points := make([]models.DataPoint, 0, models.PointCount)
	for i := 0; i < models.PointCount; i++ {
		ts := time.UnixMilli(fromMs + int64(i)*totalMs/int64(schedule.AxisMax))
		mode := sched.ModeAt(float64(i))

		point := models.NewDataPoint(ts, i, mode, len(sensors))
		for _, sensor := range sensors {
			point.Values[sensor.ID] = g.sample(sensor, mode, i)
		}
		points = append(points, point)
	}

	seed := g.config.Seed
	if g.customRand {
		seed = 0
	}

	intervals := make([]models.Interval, len(sched.Intervals))
	copy(intervals, sched.Intervals)

	return &models.Series{
		RunID:     uuid.New().String(),
		Vessel:    g.config.Vessel,
		Seed:      seed,
		Range:     r,
		Schedule:  sched.Name,
		Intervals: intervals,
		Points:    points,
	}, nil
}

// SelectSchedule returns the operating-mode schedule used for r.
func (g *Generator) SelectSchedule(r models.DateRange) (*schedule.Schedule, error) {
	sched, err := g.schedules.Select(r.Hours())
	if err != nil {
		return nil, fmt.Errorf("failed to select schedule for %s: %w", r, err)
	}
	return sched, nil
}

// Catalog returns the sensor catalog the generator draws from
func (g *Generator) Catalog() *catalog.Catalog {
	return g.catalog
}
