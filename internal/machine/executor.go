/*
 * cncbrain - Trapezoidal per-axis profiler and the channel/homing tick loop.
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

import "math"

// moveAxis advances one axis by one trapezoidal step (§4.8) and reports
// whether it is still moving afterward.
func moveAxis(ax *Axis, feed, dtSec float64, stopAtTarget bool) bool {
	diff := ax.Target - ax.Position
	dist := math.Abs(diff)

	if dist <= 0.0005 {
		ax.Position = ax.Target
		if stopAtTarget {
			ax.Velocity = 0
		}
		return false
	}

	stopDist := (ax.Velocity * ax.Velocity) / (2 * math.Max(ax.Accel, 1e-9))
	if stopAtTarget && dist <= stopDist+0.01 {
		ax.Velocity = math.Max(0, ax.Velocity-ax.Accel*dtSec)
	} else if ax.Velocity < feed {
		ax.Velocity = math.Min(feed, ax.Velocity+ax.Accel*dtSec)
	}

	step := (ax.Velocity / 60.0) * dtSec
	if step < 1e-9 && dist <= 0.05 {
		ax.Position = ax.Target
		if stopAtTarget {
			ax.Velocity = 0
		}
		return false
	}
	if step < 1e-9 {
		floor := math.Max(1.0, feed*0.02)
		ax.Velocity = floor
		step = (ax.Velocity / 60.0) * dtSec
	}

	sign := 1.0
	if diff < 0 {
		sign = -1.0
	}
	if step >= dist {
		ax.Position = ax.Target
		if stopAtTarget {
			ax.Velocity = 0
		}
		return false
	}
	ax.Position += step * sign
	return true
}

// Tick is the sole physical integrator (§4.8). E-stop and non-positive
// dtMS return immediately. Homing preempts program execution entirely.
func (m *Machine) Tick(dtMS float64) {
	if m.Estop || dtMS <= 0 {
		return
	}
	dtSec := dtMS / 1000.0

	if m.IsHoming {
		m.tickHoming(dtSec)
		return
	}

	for i, c := range m.Channels {
		m.tickChannel(i, c, dtSec)
	}
}

func (m *Machine) tickHoming(dtSec float64) {
	if m.HomingIndex >= len(m.HomingSequence) {
		m.IsHoming = false
		return
	}
	axisID := m.HomingSequence[m.HomingIndex]
	ax := m.axis(axisID)
	if ax == nil {
		m.HomingIndex++
		return
	}
	feed := m.HomingFeed
	if m.HomingRapid {
		feed = ax.RapidFeed()
	}
	stillMoving := moveAxis(ax, feed, dtSec, true)
	if !stillMoving {
		ax.Homed = true
		ax.Position = 0
		ax.Target = 0
		m.HomingIndex++
		if m.HomingIndex >= len(m.HomingSequence) {
			m.IsHoming = false
		}
	}
}

func (m *Machine) tickChannel(index int, c *Channel, dtSec float64) {
	if c.Paused {
		return
	}

	var feed float64
	if c.CurrentMotion == 0 {
		feed = m.channelRapidFeed(c)
	} else {
		feed = c.FeedRate * c.FeedOverride
	}
	if feed <= 0 && c.CurrentMotion != 0 {
		for _, am := range c.AxisMap {
			if ax := m.axis(am.AxisID); ax != nil {
				ax.Velocity = 0
			}
		}
		return
	}

	hasFutureWork := len(c.Pending) > 0 || c.PC < len(c.Program)
	stopAtTarget := c.ExactStop || !hasFutureWork || c.PausePending

	stillMoving := false
	for _, am := range c.AxisMap {
		ax := m.axis(am.AxisID)
		if ax == nil {
			continue
		}
		if moveAxis(ax, feed, dtSec, stopAtTarget) {
			stillMoving = true
		}
	}

	if stillMoving || !c.IsRunning {
		return
	}

	if c.PausePending && len(c.Pending) == 0 {
		c.Paused = true
		c.PausePending = false
		c.StepOnce = false
		return
	}

	if len(c.Pending) > 0 {
		next := c.Pending[0]
		c.Pending = c.Pending[1:]
		for _, t := range next {
			if ax := m.axis(t.AxisID); ax != nil {
				ax.SetTarget(t.Target)
			}
		}
		return
	}

	if c.PC < len(c.Program) {
		line := c.Program[c.PC]
		c.ActivePC = c.PC
		if c.SingleBlock || c.StepOnce {
			c.PausePending = true
		}
		m.ParseLine(index, line)
		c.PC++
		return
	}

	c.IsRunning = false
	c.ActivePC = -1
}
