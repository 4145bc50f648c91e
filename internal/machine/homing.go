/*
 * cncbrain - Homing sequencer.
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

import "strings"

// startHomingSequence arms the sequencer over order (deduplicated, bounds
// checked). A no-op under e-stop; ends homing immediately if order
// resolves to nothing runnable.
func (m *Machine) startHomingSequence(order []int, rapid bool, feed float64) {
	if m.Estop {
		return
	}
	seen := make(map[int]bool, len(order))
	valid := make([]int, 0, len(order))
	for _, id := range order {
		if id < 0 || id >= len(m.Axes) || seen[id] {
			continue
		}
		seen[id] = true
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		m.IsHoming = false
		return
	}
	for _, id := range valid {
		ax := m.Axes[id]
		ax.Target = 0
		ax.Homed = false
	}
	m.IsHoming = true
	m.HomingSequence = valid
	m.HomingIndex = 0
	m.HomingRapid = rapid
	if feed < 1 {
		feed = 1
	}
	m.HomingFeed = feed
}

// HomeAll homes the Z axis first (if present, matched case-insensitively
// by name), then every other axis in declaration order, at feed 300.
func (m *Machine) HomeAll() {
	var order []int
	zID := -1
	for _, ax := range m.Axes {
		if strings.EqualFold(ax.PhysicalName, "Z") {
			zID = ax.ID
			break
		}
	}
	if zID >= 0 {
		order = append(order, zID)
	}
	for _, ax := range m.Axes {
		if ax.ID != zID {
			order = append(order, ax.ID)
		}
	}
	for _, ax := range m.Axes {
		ax.Target = 0
		ax.Homed = false
	}
	m.startHomingSequence(order, false, 300)
}

// HomeAllOrdered homes primaryAxis first (if valid), then every other
// axis in declaration order.
func (m *Machine) HomeAllOrdered(primaryAxis int, rapid bool, feed float64) {
	var order []int
	if primaryAxis >= 0 && primaryAxis < len(m.Axes) {
		order = append(order, primaryAxis)
	}
	for _, ax := range m.Axes {
		if ax.ID != primaryAxis {
			order = append(order, ax.ID)
		}
	}
	for _, ax := range m.Axes {
		ax.Target = 0
		ax.Homed = false
	}
	m.startHomingSequence(order, rapid, feed)
}

// HomeAxis homes a single axis at feed 300.
func (m *Machine) HomeAxis(axisID int) {
	m.startHomingSequence([]int{axisID}, false, 300)
}
