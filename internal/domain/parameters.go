package domain

import "math"

// ParameterSet is one proposed passaging configuration.
// MixHeight is in millimetres with 0.1 mm resolution; the rest are whole units.
type ParameterSet struct {
	MixCycles     int     `json:"mix_cycles"`
	MixHeight     float64 `json:"mix_height"`
	MixVolume     int     `json:"mix_volume"`
	PassagingTime int     `json:"passaging_time"`
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Bounds are the allowed ranges for every recommended parameter.
var Bounds = struct {
	MixCycles     Range
	MixHeight     Range
	MixVolume     Range
	PassagingTime Range
}{
	MixCycles:     Range{Min: 1, Max: 10},
	MixHeight:     Range{Min: 1, Max: 4},
	MixVolume:     Range{Min: 50, Max: 150},
	PassagingTime: Range{Min: 6, Max: 48},
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp returns a copy with every field forced into Bounds and MixHeight
// rounded to 0.1 mm.
func (p ParameterSet) Clamp() ParameterSet {
	return ParameterSet{
		MixCycles:     int(Bounds.MixCycles.Clamp(float64(p.MixCycles))),
		MixHeight:     RoundHeight(Bounds.MixHeight.Clamp(p.MixHeight)),
		MixVolume:     int(Bounds.MixVolume.Clamp(float64(p.MixVolume))),
		PassagingTime: int(Bounds.PassagingTime.Clamp(float64(p.PassagingTime))),
	}
}

// Valid reports whether every field is within Bounds.
func (p ParameterSet) Valid() bool {
	return Bounds.MixCycles.Contains(float64(p.MixCycles)) &&
		Bounds.MixHeight.Contains(p.MixHeight) &&
		Bounds.MixVolume.Contains(float64(p.MixVolume)) &&
		Bounds.PassagingTime.Contains(float64(p.PassagingTime))
}

// RoundHeight rounds a mix height to 0.1 mm.
func RoundHeight(h float64) float64 {
	return math.Round(h*10) / 10
}
