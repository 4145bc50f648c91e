/*
 * cncbrain - Cutter radius compensation: offsetting, entry, corner joins.
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

// linearOffset is one compensated linear segment: its offset endpoints
// and the unit direction of programmed travel.
type linearOffset struct {
	StartOff numeric.Point2
	EndOff   numeric.Point2
	Dir      numeric.Point2
}

// sideSign maps a comp mode to the sign applied to the left normal: G41
// offsets by +radius (left of travel), G42 by -radius (right of travel).
func sideSign(mode int) float64 {
	if mode == 42 {
		return -1
	}
	return 1
}

func crossZ(a, b numeric.Point2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// computeLinearOffset builds the offset line for a programmed segment
// under active CRC. ok is false for a degenerate (zero-length) segment,
// which carries no direction to offset against.
func computeLinearOffset(start, end numeric.Point2, radius float64, mode int) (linearOffset, bool) {
	dx, dy := end.X-start.X, end.Y-start.Y
	dist := math.Hypot(dx, dy)
	if dist <= 1e-9 {
		return linearOffset{}, false
	}
	d := numeric.Point2{X: dx / dist, Y: dy / dist}
	left := numeric.Point2{X: -d.Y, Y: d.X}
	sgn := sideSign(mode)
	off := numeric.Point2{X: left.X * radius * sgn, Y: left.Y * radius * sgn}
	return linearOffset{
		StartOff: numeric.Point2{X: start.X + off.X, Y: start.Y + off.Y},
		EndOff:   numeric.Point2{X: end.X + off.X, Y: end.Y + off.Y},
		Dir:      d,
	}, true
}

// lookAheadTrimEnd implements §4.5's inside-corner look-ahead: it peeks
// the next block, and if the corner it forms with the current segment is
// not an outside corner, replaces the current segment's end with the
// miter intersection of the two offset lines (when that intersection
// actually falls within the current segment).
func lookAheadTrimEnd(c *Channel, knownLabels []gcode.AxisLabel, lo linearOffset, radius float64, mode int, progEnd numeric.Point2) numeric.Point2 {
	ex, ey, comp, ok := peekNextCompLinearXY(c, knownLabels, progEnd.X, progEnd.Y)
	if !ok || comp != mode {
		return lo.EndOff
	}
	nextEnd := numeric.Point2{X: ex, Y: ey}
	ndx, ndy := nextEnd.X-progEnd.X, nextEnd.Y-progEnd.Y
	ndist := math.Hypot(ndx, ndy)
	if ndist <= 1e-9 {
		return lo.EndOff
	}
	nd := numeric.Point2{X: ndx / ndist, Y: ndy / ndist}

	cross := crossZ(lo.Dir, nd)
	if sideSign(mode)*cross < 0 {
		// Outside corner: the wrap is inserted when the *next* block
		// processes its continuation join, not here.
		return lo.EndOff
	}

	left := numeric.Point2{X: -nd.Y, Y: nd.X}
	sgn := sideSign(mode)
	nextStartOff := numeric.Point2{X: progEnd.X + left.X*radius*sgn, Y: progEnd.Y + left.Y*radius*sgn}

	ip, ok2 := numeric.LineIntersection2D(lo.StartOff, lo.Dir, nextStartOff, nd)
	if !ok2 {
		return lo.EndOff
	}
	segLen := math.Hypot(lo.EndOff.X-lo.StartOff.X, lo.EndOff.Y-lo.StartOff.Y)
	t := (ip.X-lo.StartOff.X)*lo.Dir.X + (ip.Y-lo.StartOff.Y)*lo.Dir.Y
	if t < 0 || t > segLen+1e-6 {
		return lo.EndOff
	}
	return ip
}

// joinWithPrev implements §4.5's continuation joins against the recorded
// previous compensated segment: an outside corner gets an arc wrap fan
// (returned in arcWrap; its final point is the new start offset), an
// inside/colinear corner gets a miter.
func joinWithPrev(prev *CompLinearState, progStart numeric.Point2, lo linearOffset, radius float64, mode int) (startOff numeric.Point2, arcWrap []numeric.Point2) {
	if prev == nil || prev.Mode != mode {
		return lo.StartOff, nil
	}
	if math.Hypot(prev.EndProgX-progStart.X, prev.EndProgY-progStart.Y) > 1e-4 {
		return lo.StartOff, nil
	}
	prevDir := numeric.Point2{X: prev.DirX, Y: prev.DirY}
	cross := crossZ(prevDir, lo.Dir)
	sgn := sideSign(mode)

	if sgn*cross < -1e-6 {
		pts := numeric.BuildShortArcPoints(progStart.X, progStart.Y,
			numeric.Point2{X: prev.EndOffX, Y: prev.EndOffY}, lo.StartOff, radius)
		return lo.StartOff, pts
	}

	ip, ok := numeric.LineIntersection2D(
		numeric.Point2{X: prev.EndOffX, Y: prev.EndOffY}, prevDir,
		lo.StartOff, lo.Dir)
	if !ok {
		return lo.StartOff, nil
	}
	return ip, nil
}
