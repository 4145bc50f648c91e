/*
 * cncbrain - Numeric helpers shared by the geometry and CRC stages.
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

// Package numeric holds the small, allocation-free geometry and angle
// helpers used by both the programmed-geometry generator and the cutter
// compensation engine: rotary wraparound, 2D line intersection, arc point
// expansion for corner wraps, and the rapid-feed derivation from an axis's
// acceleration.
package numeric

import "math"

// Point2 is a 2D point or vector in a channel's work coordinate plane.
type Point2 struct {
	X, Y float64
}

const (
	// RapidLinearMinMMMin is the floor of the derived rapid feed for linear axes.
	RapidLinearMinMMMin = 50_000.0
	// RapidLinearMaxMMMin is the ceiling of the derived rapid feed for linear axes.
	RapidLinearMaxMMMin = 80_000.0
	// RapidRotaryMinDegMin is the floor of the derived rapid feed for rotary axes.
	RapidRotaryMinDegMin = 6_000.0
	// RapidRotaryMaxDegMin is the ceiling of the derived rapid feed for rotary axes.
	RapidRotaryMaxDegMin = 30_000.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeRotaryTarget wraps value to (-180, +180] degrees.
func NormalizeRotaryTarget(value float64) float64 {
	wrapped := math.Mod(value, 360.0)
	if wrapped > 180.0 {
		wrapped -= 360.0
	} else if wrapped <= -180.0 {
		wrapped += 360.0
	}
	return wrapped
}

// RapidFeedLinear derives a linear axis's rapid feed (mm/min) from its acceleration.
func RapidFeedLinear(accel float64) float64 {
	return clamp(math.Max(accel, 1.0)*30.0, RapidLinearMinMMMin, RapidLinearMaxMMMin)
}

// RapidFeedRotary derives a rotary axis's rapid feed (deg/min) from its acceleration.
func RapidFeedRotary(accel float64) float64 {
	return clamp(math.Max(accel, 1.0)*20.0, RapidRotaryMinDegMin, RapidRotaryMaxDegMin)
}

// LineIntersection2D finds the intersection of line p1+t*d1 with p2+s*d2.
// Returns ok=false when the lines are parallel (cross product near zero).
func LineIntersection2D(p1, d1, p2, d2 Point2) (Point2, bool) {
	cross := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(cross) <= 1e-9 {
		return Point2{}, false
	}
	qmp := Point2{p2.X - p1.X, p2.Y - p1.Y}
	t := (qmp.X*d2.Y - qmp.Y*d2.X) / cross
	return Point2{p1.X + t*d1.X, p1.Y + t*d1.Y}, true
}

// ArcCenterMatches reports whether the candidate center (cx,cy) produces a
// sweep from (sx,sy) to (ex,ey) whose "major arc" classification (sweep >=
// pi) matches wantLarge, for the given rotation sense.
func ArcCenterMatches(sx, sy, ex, ey, cx, cy float64, cw, wantLarge bool) bool {
	a0 := math.Atan2(sy-cy, sx-cx)
	a1 := math.Atan2(ey-cy, ex-cx)
	da := a1 - a0
	if cw {
		if da >= 0.0 {
			da -= 2 * math.Pi
		}
	} else {
		if da <= 0.0 {
			da += 2 * math.Pi
		}
	}
	sweep := math.Abs(da)
	if wantLarge {
		return sweep >= math.Pi-1e-9
	}
	return sweep <= math.Pi+1e-9
}

// BuildShortArcPoints expands a short corner-wrap arc around (cx,cy) from
// "from" to "to", with the given radius, into a fan of intermediate points
// (the final point is always "to"). Point count is clamped to [4,48] and
// driven by arc length so tight corners stay cheap and wide ones stay smooth.
func BuildShortArcPoints(cx, cy float64, from, to Point2, radius float64) []Point2 {
	if radius <= 1e-9 {
		return []Point2{to}
	}
	a0 := math.Atan2(from.Y-cy, from.X-cx)
	a1 := math.Atan2(to.Y-cy, to.X-cx)
	da := a1 - a0
	for da <= -math.Pi {
		da += 2 * math.Pi
	}
	for da > math.Pi {
		da -= 2 * math.Pi
	}
	sweep := math.Abs(da)
	if sweep <= 1e-6 {
		return []Point2{to}
	}
	n := int(clamp(math.Ceil((radius*sweep)/1.2), 4, 48))
	out := make([]Point2, 0, n)
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n)
		a := a0 + da*t
		out = append(out, Point2{cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	return out
}
