/*
 * cncbrain - Axis kinematic state.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package machine implements the G-code interpretation and motion-tick core:
// axes and channels, the modal interpreter, the geometry and cutter-radius
// compensation engines, and the trapezoidal per-axis executor.
package machine

import "github.com/rcornwell/cncbrain/internal/numeric"

// AxisKind distinguishes linear axes (soft-limit clamped) from rotary axes
// (normalized to a signed range).
type AxisKind int

const (
	Linear AxisKind = iota
	Rotary
)

// Axis is one physical axis of motion: its kinematic state plus the display
// conventions (invert, machine_zero) that belong to the host, not the core,
// but are carried here so the snapshot can report them.
type Axis struct {
	ID           int
	PhysicalName string
	Kind         AxisKind

	Position float64
	Target   float64
	Velocity float64
	Accel    float64

	MinRange float64
	MaxRange float64

	Homed bool

	Invert      bool
	MachineZero float64
}

// newAxis constructs an axis with every kinematic field zeroed.
func newAxis(id int, name string, kind AxisKind, min, max float64) *Axis {
	return &Axis{
		ID:           id,
		PhysicalName: name,
		Kind:         kind,
		MinRange:     min,
		MaxRange:     max,
	}
}

// ClampTarget applies §4.9: linear axes clamp to [min,max], rotary axes
// normalize to (-180, +180].
func (a *Axis) ClampTarget(value float64) float64 {
	if a.Kind == Rotary {
		return numeric.NormalizeRotaryTarget(value)
	}
	if value < a.MinRange {
		return a.MinRange
	}
	if value > a.MaxRange {
		return a.MaxRange
	}
	return value
}

// SetTarget writes target through the clamp/normalize filter.
func (a *Axis) SetTarget(value float64) {
	a.Target = a.ClampTarget(value)
}

// RapidFeed derives this axis's rapid-motion feed from its acceleration.
func (a *Axis) RapidFeed() float64 {
	if a.Kind == Rotary {
		return numeric.RapidFeedRotary(a.Accel)
	}
	return numeric.RapidFeedLinear(a.Accel)
}
