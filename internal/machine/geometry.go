/*
 * cncbrain - Arc centre resolution, segment counts and look-ahead peek.
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

package machine

import (
	"math"

	"github.com/rcornwell/cncbrain/internal/gcode"
	"github.com/rcornwell/cncbrain/internal/numeric"
)

// resolveArcCenter implements §4.6's centre resolution: IJ form is direct;
// R form picks one of the two chord-bisector candidates by direction and
// the major/minor flag carried in the sign of R. ok is false for
// impossible geometry (zero chord, chord too long for R, no I/J/R at all).
func resolveArcCenter(sx, sy, ex, ey float64, i, j, r *float64, cw bool) (cx, cy float64, ok bool) {
	if i != nil || j != nil {
		iv, jv := 0.0, 0.0
		if i != nil {
			iv = *i
		}
		if j != nil {
			jv = *j
		}
		return sx + iv, sy + jv, true
	}
	if r == nil {
		return 0, 0, false
	}
	rv := *r
	chord := math.Hypot(ex-sx, ey-sy)
	if chord <= 1e-9 || chord > 2*math.Abs(rv) {
		return 0, 0, false
	}
	midX, midY := (sx+ex)/2, (sy+ey)/2
	dx, dy := (ex-sx)/chord, (ey-sy)/chord
	px, py := -dy, dx
	h := math.Sqrt(math.Max(0, rv*rv-(chord/2)*(chord/2)))
	wantLarge := rv < 0
	cand1X, cand1Y := midX+px*h, midY+py*h
	cand2X, cand2Y := midX-px*h, midY-py*h
	if numeric.ArcCenterMatches(sx, sy, ex, ey, cand1X, cand1Y, cw, wantLarge) {
		return cand1X, cand1Y, true
	}
	if numeric.ArcCenterMatches(sx, sy, ex, ey, cand2X, cand2Y, cw, wantLarge) {
		return cand2X, cand2Y, true
	}
	// Neither candidate matches at the tolerance boundary; fall back to
	// the first candidate.
	return cand1X, cand1Y, true
}

// arcSweep computes the signed angular travel from a0 to a1: CCW results
// lie in (0, +2*pi], CW in [-2*pi, 0).
func arcSweep(a0, a1 float64, cw bool) float64 {
	da := a1 - a0
	if cw {
		for da >= 0 {
			da -= 2 * math.Pi
		}
		for da < -2*math.Pi {
			da += 2 * math.Pi
		}
	} else {
		for da <= 0 {
			da += 2 * math.Pi
		}
		for da > 2*math.Pi {
			da -= 2 * math.Pi
		}
	}
	return da
}

// arcSegmentCount implements §4.6's chord-tolerance and arc-length
// formulas, clamped to [24,1440].
func arcSegmentCount(r, absDa float64) int {
	const tol = 0.005
	const chordLen = 1.5
	stepAng := 2 * math.Acos(clampF(1-tol/r, -1, 1))
	if stepAng <= 0 {
		stepAng = 1e-6
	}
	nTol := math.Ceil(absDa / stepAng)
	nLen := math.Ceil((r * absDa) / chordLen)
	n := math.Max(nTol, nLen)
	return int(clampF(n, 24, 1440))
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// arcLeftNormal returns the left normal of the tangent direction at angle
// ang on a circle traversed with sweep sign daSign (matching §4.6: the
// tangent is (-sin, cos) * sign(Δa)).
func arcLeftNormal(ang, daSign float64) (nx, ny float64) {
	tx := -math.Sin(ang) * sign(daSign)
	ty := math.Cos(ang) * sign(daSign)
	// left normal of (tx,ty) is (-ty,tx)
	return -ty, tx
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// peekNextCompLinearXY re-lexes the channel's next program line (pc+1)
// without mutating any channel state, to support CRC's inside-corner
// look-ahead trim. startX/startY is the current block's programmed end
// point (the next block's implicit start), used to resolve incremental
// X/Y words. Returns ok=false unless the next block resolves to motion G1
// with compensation 41/42 and at least one of X/Y present.
func peekNextCompLinearXY(c *Channel, knownLabels []gcode.AxisLabel, startX, startY float64) (ex, ey float64, comp int, ok bool) {
	next := c.PC + 1
	if next < 0 || next >= len(c.Program) {
		return 0, 0, 0, false
	}
	b := gcode.Lex(c.Program[next], knownLabels, c.UnitsMM)

	motion := c.CurrentMotion
	if g, found := b.LastMotionG(); found {
		motion = g
	}
	if motion != 1 {
		return 0, 0, 0, false
	}

	comp = c.CutterComp
	switch {
	case b.HasG(40):
		comp = 40
	case b.HasG(41):
		comp = 41
	case b.HasG(42):
		comp = 42
	}
	if comp != 41 && comp != 42 {
		return 0, 0, 0, false
	}

	absMode := c.AbsMode
	if b.HasG(90) {
		absMode = true
	} else if b.HasG(91) {
		absMode = false
	}

	x, xset := b.Axis("X")
	y, yset := b.Axis("Y")
	if !xset && !yset {
		return 0, 0, 0, false
	}

	ex, ey = startX, startY
	if xset {
		if absMode {
			ex = x
		} else {
			ex = startX + x
		}
	}
	if yset {
		if absMode {
			ey = y
		} else {
			ey = startY + y
		}
	}
	return ex, ey, comp, true
}
