/*
 * cncbrain - Work coordinate system frames.
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

// AxisOffset is one axis's contribution to a work coordinate frame.
type AxisOffset struct {
	AxisID int
	Offset float64
}

// WorkOffset is one named WCS frame (G54..G59, G153), holding one offset
// entry per axis that existed when the frame was grown.
type WorkOffset struct {
	Label   string
	Offsets []AxisOffset
}

func defaultWorkOffsets() []WorkOffset {
	labels := []string{"G54", "G55", "G56", "G57", "G58", "G59", "G153"}
	out := make([]WorkOffset, 0, len(labels))
	for _, l := range labels {
		out = append(out, WorkOffset{Label: l})
	}
	return out
}

func (w *WorkOffset) offsetFor(axisID int) float64 {
	for _, o := range w.Offsets {
		if o.AxisID == axisID {
			return o.Offset
		}
	}
	return 0.0
}

func (w *WorkOffset) setOffsetFor(axisID int, value float64) {
	for i := range w.Offsets {
		if w.Offsets[i].AxisID == axisID {
			w.Offsets[i].Offset = value
			return
		}
	}
	w.Offsets = append(w.Offsets, AxisOffset{AxisID: axisID, Offset: value})
}

func (w *WorkOffset) growForNewAxis(axisID int) {
	w.Offsets = append(w.Offsets, AxisOffset{AxisID: axisID, Offset: 0.0})
}
