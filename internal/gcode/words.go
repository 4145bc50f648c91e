/*
 * cncbrain - G-code word types.
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

package gcode

// AxisLabel pairs a channel-declared word letter (e.g. "X" or a
// multi-character label like "Z3") with matching priority: longer labels
// must be tried before the single-letter X/Y/Z words so "Z3" isn't lexed
// as "Z" followed by a stray "3".
type AxisLabel struct {
	Label string
}

// AxisWord is one axis word found on a block, already unit-scaled to
// millimetres. The lexer has no notion of axis kind, so under G20 a word
// for a rotary label is scaled by 25.4 as well, and no caller undoes that.
type AxisWord struct {
	Label string
	Value float64
}

// Block is the result of lexing one G-code line: every recognized word,
// in order of occurrence where order matters (G/M words), plus the
// last-one-wins scalar words.
type Block struct {
	GWords  []int
	MWords  []int
	Feed    *float64
	Spindle *float64
	Tool    *int

	AxisWords []AxisWord

	// I/J/R are arc parameters; D/H select cutter/length compensation
	// table slots. Raw holds the unscaled numeric literal (needed to
	// resolve integer tool-table slot indices regardless of units).
	I, J, R   *float64
	D, DRaw   *float64
	H, HRaw   *float64
}

// HasG reports whether code g appeared anywhere on the block.
func (b *Block) HasG(g int) bool {
	for _, w := range b.GWords {
		if w == g {
			return true
		}
	}
	return false
}

// LastMotionG returns the last of G0/G1/G2/G3 seen on the block, if any.
func (b *Block) LastMotionG() (int, bool) {
	found := false
	var last int
	for _, w := range b.GWords {
		switch w {
		case 0, 1, 2, 3:
			last = w
			found = true
		}
	}
	return last, found
}

// Axis looks up the (last) value given for label on this block.
func (b *Block) Axis(label string) (float64, bool) {
	found := false
	var v float64
	for _, aw := range b.AxisWords {
		if aw.Label == label {
			v = aw.Value
			found = true
		}
	}
	return v, found
}
