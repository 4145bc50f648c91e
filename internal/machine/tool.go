/*
 * cncbrain - D/H tool-table slot resolution.
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

// resolveTableSlotIndex rounds a raw (unscaled) D/H literal to a
// non-negative integer slot if it is within 1e-9 of one; returns ok=false
// otherwise (e.g. a fractional D value addresses no table slot).
func resolveTableSlotIndex(raw float64) (int, bool) {
	if raw < 0 {
		return 0, false
	}
	rounded := math.Round(raw)
	if math.Abs(raw-rounded) > 1e-9 {
		return 0, false
	}
	return int(rounded), true
}

// resolveDRadius resolves a D word to a tool radius: an integer slot
// present in the table overrides the lexed (already unit-scaled) literal;
// otherwise the absolute value of the scaled literal is used.
func resolveDRadius(c *Channel, raw, scaled float64) float64 {
	if slot, ok := resolveTableSlotIndex(raw); ok {
		if entry, present := c.ToolTable[slot]; present {
			return entry.Radius
		}
	}
	return math.Abs(scaled)
}

// resolveHLength resolves an H word to a tool length the same way, except
// that the scaled literal keeps its sign.
func resolveHLength(c *Channel, raw, scaled float64) float64 {
	if slot, ok := resolveTableSlotIndex(raw); ok {
		if entry, present := c.ToolTable[slot]; present {
			return entry.Length
		}
	}
	return scaled
}
