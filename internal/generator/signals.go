package generator

import (
	"math"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/schedule"
)

// sample computes one reading: mode baseline, slow oscillation, noise, clamp.
// Must be called with g.mu held.
func (g *Generator) sample(sensor catalog.Sensor, mode string, pos int) float64 {
	value := g.rules.Baseline(mode, sensor)

	if !g.config.DisableOscillation {
		value += oscillation(pos) * g.oscAmplitude * sensor.Span()
	}

	value += g.noise(sensor)

	return sensor.Clamp(value)
}

// oscillation is one full sine period across the normalized axis
func oscillation(pos int) float64 {
	return math.Sin(float64(pos) / schedule.AxisMax * 2 * math.Pi)
}

// noise is uniform in ±noiseFraction/2 of the sensor span
func (g *Generator) noise(sensor catalog.Sensor) float64 {
	return (g.rng.Float64() - 0.5) * sensor.Span() * g.noiseFraction
}
