/*
 * cncbrain - Block orchestration: modal interpreter, geometry, CRC, queue.
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

// knownLabelsFor returns the channel's multi-character axis labels, for
// lexer precedence (see gcode.Lex).
func (m *Machine) knownLabelsFor(c *Channel) []gcode.AxisLabel {
	var labels []gcode.AxisLabel
	for _, am := range c.AxisMap {
		if len(am.DisplayLabel) > 1 {
			labels = append(labels, gcode.AxisLabel{Label: am.DisplayLabel})
		}
	}
	return labels
}

// workPosition resolves §4.4's start-point cache for one axis: the
// programmed-work cache if present, else the physical position converted
// to work space (decompensating Z length comp on that first fallback).
func (m *Machine) workPosition(c *Channel, axisID int, label string) float64 {
	if v, ok := c.ProgrammedWork[axisID]; ok {
		return v
	}
	ax := m.axis(axisID)
	if ax == nil {
		return 0
	}
	work := m.machineToWork(axisID, ax.Position)
	if label == "Z" && c.LengthCompActive {
		work -= c.ToolLength
	}
	return work
}

// axisTargetFromWork converts one axis's work-space value into a machine
// target, adding tool length on Z under active length comp, and running
// it through the standard clamp/normalize filter.
func (m *Machine) axisTargetFromWork(c *Channel, axisID int, label string, work float64) AxisTarget {
	machineVal := m.workToMachine(axisID, work)
	if label == "Z" && c.LengthCompActive {
		machineVal += c.ToolLength
	}
	return AxisTarget{AxisID: axisID, Target: m.machineTargetWithLimits(axisID, machineVal)}
}

// pushSegments applies §4.10's immediate+enqueue dispatch. When
// allQueued is true (arc motion), every segment is enqueued and none is
// applied synchronously.
func (m *Machine) pushSegments(c *Channel, segments [][]AxisTarget, allQueued bool) {
	if len(segments) == 0 {
		return
	}
	start := 0
	if !allQueued {
		for _, t := range segments[0] {
			if ax := m.axis(t.AxisID); ax != nil {
				ax.SetTarget(t.Target)
			}
		}
		start = 1
	}
	c.Pending = append(c.Pending, segments[start:]...)
}

// ParseLine is the single entry point that lexes one block and drives it
// through the modal interpreter, geometry generator and CRC engine,
// enqueuing whatever segments result. It never mutates any channel other
// than channelIndex, and never returns an error: malformed or impossible
// geometry is silently discarded per the controller's fault-tolerant
// policy.
func (m *Machine) ParseLine(channelIndex int, line string) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	labels := m.knownLabelsFor(c)
	b := gcode.Lex(line, labels, c.UnitsMM)

	if b.Feed != nil {
		c.FeedRate = *b.Feed
	}
	if b.Spindle != nil {
		c.SpindleRPM = *b.Spindle
	}
	if b.Tool != nil {
		m.SetActiveTool(channelIndex, *b.Tool)
	}

	xWord, xSet := b.Axis("X")
	yWord, ySet := b.Axis("Y")
	hasXYMotion := xSet || ySet

	g40Requested := b.HasG(40)
	g41Requested := b.HasG(41)
	g42Requested := b.HasG(42)

	if b.HasG(90) {
		c.AbsMode = true
	}
	if b.HasG(91) {
		c.AbsMode = false
	}
	if b.HasG(20) {
		c.UnitsMM = false
	}
	if b.HasG(21) {
		c.UnitsMM = true
	}
	if b.HasG(17) {
		c.Plane = 17
	}
	if b.HasG(61) {
		c.ExactStop = true
	}
	if b.HasG(64) {
		c.ExactStop = false
	}
	for wcsG := 54; wcsG <= 59; wcsG++ {
		if b.HasG(wcsG) {
			m.SetActiveWCS(wcsG - 54)
		}
	}
	if b.HasG(153) {
		m.SetActiveWCS(6)
	}
	if b.HasG(43) {
		c.LengthCompActive = true
	}
	if b.HasG(49) {
		c.LengthCompActive = false
	}

	// G40's own comp-state clearing is deferred to the end of ParseLine: a
	// motion block that cancels comp still runs this one block compensated
	// on the mode active before the G40 word, per spec.md §9.
	if g41Requested || g42Requested {
		mode := 41
		if g42Requested {
			mode = 42
		}
		c.CutterComp = mode
		if b.D != nil && b.DRaw != nil {
			c.ToolRadius = resolveDRadius(c, *b.DRaw, *b.D)
			if slot, ok := resolveTableSlotIndex(*b.DRaw); ok {
				c.ActiveD = slot
			}
		}
	}

	for _, mw := range b.MWords {
		switch mw {
		case 3:
			c.SpindleMode = 3
		case 4:
			c.SpindleMode = 4
		case 5:
			c.SpindleMode = 5
		case 8:
			c.CoolantOn = true
		case 9:
			c.CoolantOn = false
		}
	}

	wasPending := c.CompEntryPending
	if g40Requested {
		c.CompEntryPending = false
	} else if g41Requested || g42Requested {
		c.CompEntryPending = !hasXYMotion || wasPending
	}

	if b.D != nil && b.DRaw != nil && !g41Requested && !g42Requested {
		c.ToolRadius = resolveDRadius(c, *b.DRaw, *b.D)
		if slot, ok := resolveTableSlotIndex(*b.DRaw); ok {
			c.ActiveD = slot
		}
	}
	if b.H != nil && b.HRaw != nil {
		c.ToolLength = resolveHLength(c, *b.HRaw, *b.H)
		if slot, ok := resolveTableSlotIndex(*b.HRaw); ok {
			c.ActiveH = slot
		}
	}

	motion := c.CurrentMotion
	if g, found := b.LastMotionG(); found {
		motion = g
		c.CurrentMotion = g
	}

	switch motion {
	case 0, 1:
		m.parseLinearMotion(c, b, motion, xWord, ySet, yWord, xSet, wasPending, g41Requested, g42Requested)
	case 2, 3:
		m.parseArcMotion(c, b, motion == 2)
	}

	if g40Requested {
		c.CutterComp = 40
		c.CompLinearPrev = nil
	}
}

func axisXYZWork(m *Machine, c *Channel) (xID, yID, zID int, haveX, haveY, haveZ bool, workX, workY, workZ float64) {
	if id, ok := c.axisIDFor("X"); ok {
		haveX = true
		xID = id
		workX = m.workPosition(c, id, "X")
	}
	if id, ok := c.axisIDFor("Y"); ok {
		haveY = true
		yID = id
		workY = m.workPosition(c, id, "Y")
	}
	if id, ok := c.axisIDFor("Z"); ok {
		haveZ = true
		zID = id
		workZ = m.workPosition(c, id, "Z")
	}
	return
}

func (m *Machine) parseLinearMotion(c *Channel, b *gcode.Block, motion int, xWord float64, ySet bool, yWord float64, xSet bool, wasPending, g41Requested, g42Requested bool) {
	xID, yID, zID, haveX, haveY, haveZ, workX, workY, workZ := axisXYZWork(m, c)

	startX, startY := workX, workY
	endX, endY := workX, workY
	if xSet {
		if c.AbsMode {
			endX = xWord
		} else {
			endX = workX + xWord
		}
	}
	if ySet {
		if c.AbsMode {
			endY = yWord
		} else {
			endY = workY + yWord
		}
	}
	zWord, zSet := b.Axis("Z")
	endZ := workZ
	if zSet {
		if c.AbsMode {
			endZ = zWord
		} else {
			endZ = workZ + zWord
		}
	}

	var segments [][]AxisTarget

	useCRC := motion == 1 && (c.CutterComp == 41 || c.CutterComp == 42) && c.ToolRadius > 0 && haveX && haveY && (endX != startX || endY != startY)

	if useCRC {
		start := numeric.Point2{X: startX, Y: startY}
		end := numeric.Point2{X: endX, Y: endY}
		lo, ok := computeLinearOffset(start, end, c.ToolRadius, c.CutterComp)
		if ok {
			lo.EndOff = lookAheadTrimEnd(c, m.knownLabelsFor(c), lo, c.ToolRadius, c.CutterComp, end)
			startOff, wrap := joinWithPrev(c.CompLinearPrev, start, lo, c.ToolRadius, c.CutterComp)

			entryTriggered := wasPending || ((g41Requested || g42Requested) && (xSet != ySet))
			// The first compensated XY feed block consumes an armed entry.
			c.CompEntryPending = false

			// A join is worth its own waypoint only when it actually moves
			// the path: a straight continuation resolves to the same point
			// as the previous segment's offset end and collapses away.
			continuingJoin := false
			if prev := c.CompLinearPrev; prev != nil {
				continuingJoin = math.Hypot(startOff.X-prev.EndOffX, startOff.Y-prev.EndOffY) > 1e-6
			}

			var segXYs []numeric.Point2
			switch {
			case len(wrap) > 0:
				segXYs = append(segXYs, wrap...)
			case entryTriggered || continuingJoin:
				segXYs = append(segXYs, startOff)
			}
			segXYs = append(segXYs, lo.EndOff)

			extra := m.simpleAxisTargets(c, b)
			for i, p := range segXYs {
				seg := []AxisTarget{
					m.axisTargetFromWork(c, xID, "X", p.X),
					m.axisTargetFromWork(c, yID, "Y", p.Y),
				}
				if i == len(segXYs)-1 {
					if zSet && haveZ {
						seg = append(seg, m.axisTargetFromWork(c, zID, "Z", endZ))
					}
					seg = append(seg, extra...)
				}
				segments = append(segments, seg)
			}

			c.CompLinearPrev = &CompLinearState{
				EndProgX: endX, EndProgY: endY,
				EndOffX: lo.EndOff.X, EndOffY: lo.EndOff.Y,
				DirX: lo.Dir.X, DirY: lo.Dir.Y,
				Mode:   c.CutterComp,
				Radius: c.ToolRadius,
			}
		}
	} else {
		c.CompLinearPrev = nil
		var seg []AxisTarget
		if xSet && haveX {
			seg = append(seg, m.axisTargetFromWork(c, xID, "X", endX))
		}
		if ySet && haveY {
			seg = append(seg, m.axisTargetFromWork(c, yID, "Y", endY))
		}
		if zSet && haveZ {
			seg = append(seg, m.axisTargetFromWork(c, zID, "Z", endZ))
		}
		seg = append(seg, m.simpleAxisTargets(c, b)...)
		if len(seg) > 0 {
			segments = append(segments, seg)
		}
	}

	if haveX {
		c.ProgrammedWork[xID] = endX
	}
	if haveY {
		c.ProgrammedWork[yID] = endY
	}
	if haveZ {
		c.ProgrammedWork[zID] = endZ
	}

	m.pushSegments(c, segments, false)
}

// simpleAxisTargets handles any channel-mapped axis outside X/Y/Z that
// the lexer returned a word for: a direct, uncompensated linear move.
// knownLabelsFor passes only multi-character labels to the lexer, so a
// single-letter label such as "A" never receives a word here.
func (m *Machine) simpleAxisTargets(c *Channel, b *gcode.Block) []AxisTarget {
	var out []AxisTarget
	for _, am := range c.AxisMap {
		if am.DisplayLabel == "X" || am.DisplayLabel == "Y" || am.DisplayLabel == "Z" {
			continue
		}
		v, ok := b.Axis(am.DisplayLabel)
		if !ok {
			continue
		}
		work := m.workPosition(c, am.AxisID, am.DisplayLabel)
		if c.AbsMode {
			work = v
		} else {
			work += v
		}
		c.ProgrammedWork[am.AxisID] = work
		out = append(out, m.axisTargetFromWork(c, am.AxisID, am.DisplayLabel, work))
	}
	return out
}

func (m *Machine) parseArcMotion(c *Channel, b *gcode.Block, cw bool) {
	xID, yID, zID, haveX, haveY, haveZ, startXWork, startYWork, startZWork := axisXYZWork(m, c)
	if !haveX || !haveY {
		return
	}

	endX, endY := startXWork, startYWork
	if xv, ok := b.Axis("X"); ok {
		if c.AbsMode {
			endX = xv
		} else {
			endX = startXWork + xv
		}
	}
	if yv, ok := b.Axis("Y"); ok {
		if c.AbsMode {
			endY = yv
		} else {
			endY = startYWork + yv
		}
	}
	endZ := startZWork
	if zv, ok := b.Axis("Z"); ok {
		if c.AbsMode {
			endZ = zv
		} else {
			endZ = startZWork + zv
		}
	}

	cx, cy, ok := resolveArcCenter(startXWork, startYWork, endX, endY, b.I, b.J, b.R, cw)
	c.CompLinearPrev = nil
	if !ok {
		c.ProgrammedWork[xID] = endX
		c.ProgrammedWork[yID] = endY
		if haveZ {
			c.ProgrammedWork[zID] = endZ
		}
		return
	}

	r := math.Hypot(startXWork-cx, startYWork-cy)
	if r <= 1e-9 {
		c.ProgrammedWork[xID] = endX
		c.ProgrammedWork[yID] = endY
		if haveZ {
			c.ProgrammedWork[zID] = endZ
		}
		return
	}

	a0 := math.Atan2(startYWork-cy, startXWork-cx)
	a1 := math.Atan2(endY-cy, endX-cx)
	da := arcSweep(a0, a1, cw)
	n := arcSegmentCount(r, math.Abs(da))

	crcActive := (c.CutterComp == 41 || c.CutterComp == 42) && c.ToolRadius > 0
	sgn := sideSign(c.CutterComp)

	var segments [][]AxisTarget
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n)
		ang := a0 + da*t
		px := cx + r*math.Cos(ang)
		py := cy + r*math.Sin(ang)
		if crcActive {
			nx, ny := arcLeftNormal(ang, da)
			px += nx * c.ToolRadius * sgn
			py += ny * c.ToolRadius * sgn
		}
		z := startZWork + (endZ-startZWork)*t
		seg := []AxisTarget{
			m.axisTargetFromWork(c, xID, "X", px),
			m.axisTargetFromWork(c, yID, "Y", py),
		}
		if haveZ {
			seg = append(seg, m.axisTargetFromWork(c, zID, "Z", z))
		}
		segments = append(segments, seg)
	}

	c.ProgrammedWork[xID] = endX
	c.ProgrammedWork[yID] = endY
	if haveZ {
		c.ProgrammedWork[zID] = endZ
	}

	m.pushSegments(c, segments, true)
}
