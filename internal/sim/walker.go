// Package sim produces plausible readings for exercising the server without
// hardware.
package sim

import (
	"math"
	"math/rand/v2"

	"esp8266-web/pkg/types"
)

// Walker is a bounded random walk around indoor baselines. Not safe for
// concurrent use.
type Walker struct {
	rng      *rand.Rand
	tempCo   float64
	tempRoom float64
	humidity float64
}

func NewWalker(seed uint64) *Walker {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Walker{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		tempCo:   24,
		tempRoom: 21,
		humidity: 45,
	}
}

// Next advances the walk and returns the new sample without a timestamp, so
// the server stamps it on arrival.
func (w *Walker) Next() types.ReadingPayload {
	w.tempCo = clamp(w.tempCo+w.step(0.3), 10, 45)
	w.tempRoom = clamp(w.tempRoom+w.step(0.2), 10, 35)
	w.humidity = clamp(w.humidity+w.step(1.0), 0, 100)

	return types.ReadingPayload{
		TempCo:   round(w.tempCo, 2),
		TempRoom: round(w.tempRoom, 2),
		Humidity: round(w.humidity, 1),
	}
}

func (w *Walker) step(scale float64) float64 {
	return (w.rng.Float64()*2 - 1) * scale
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
