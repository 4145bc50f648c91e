/*
 * cncbrain - G-code block lexer.
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

// Package gcode scans a single uppercased G-code block into modal words,
// axis words and arc/compensation parameters. It never rejects a block:
// malformed lexemes are skipped a byte at a time, per the controller's
// fault-tolerant, silent error policy.
package gcode

import (
	"sort"
	"strconv"
	"strings"
)

// sortedLabels returns known multi-character axis labels (longest first)
// so they win over the bare single-letter X/Y/Z match during scanning.
func sortedLabels(labels []AxisLabel) []AxisLabel {
	out := make([]AxisLabel, 0, len(labels))
	for _, l := range labels {
		if len(l.Label) > 1 {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i].Label) > len(out[j].Label) })
	return out
}

// Lex scans line (already uppercased) into a Block. knownLabels lists any
// channel-declared multi-character axis labels (e.g. "Z3"); X/Y/Z are
// always recognized. initialUnitsMM is the channel's modal units flag
// before this block; a G20/G21 word on the block rescales every
// length-bearing word lexed after it (and is itself applied to words
// lexed before a later G21/G20 switches it back).
func Lex(line string, knownLabels []AxisLabel, initialUnitsMM bool) *Block {
	b := &Block{}
	multiLabels := sortedLabels(knownLabels)
	unitsMM := initialUnitsMM
	bytes := []byte(line)
	i := 0

	unit := func() float64 {
		if unitsMM {
			return 1.0
		}
		return 25.4
	}

	for i < len(bytes) {
		c := bytes[i]
		if isSpace(c) {
			i++
			continue
		}
		if c == ';' {
			break
		}
		if c == '(' {
			i++
			for i < len(bytes) && bytes[i] != ')' {
				i++
			}
			if i < len(bytes) && bytes[i] == ')' {
				i++
			}
			continue
		}

		upper := toUpper(c)

		// Multi-character labels take precedence over single-letter X/Y/Z.
		if label, ok := matchLabel(bytes[i:], multiLabels); ok {
			i += len(label)
			v, n := parseFloat(bytes[i:])
			if n > 0 && v != nil {
				b.AxisWords = append(b.AxisWords, AxisWord{Label: label, Value: *v * unit()})
			}
			i += n
			continue
		}

		switch upper {
		case 'G':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				g := int(round(*v))
				b.GWords = append(b.GWords, g)
				if g == 20 {
					unitsMM = false
				} else if g == 21 {
					unitsMM = true
				}
			}
			continue
		case 'M':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				b.MWords = append(b.MWords, int(round(*v)))
			}
			continue
		case 'F':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				f := *v * unit()
				b.Feed = &f
			}
			continue
		case 'S':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			b.Spindle = v
			continue
		case 'T':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				t := int(round(*v))
				b.Tool = &t
			}
			continue
		case 'I':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				iv := *v * unit()
				b.I = &iv
			}
			continue
		case 'J':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				jv := *v * unit()
				b.J = &jv
			}
			continue
		case 'R':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				rv := *v * unit()
				b.R = &rv
			}
			continue
		case 'D':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				b.DRaw = v
				dv := *v * unit()
				b.D = &dv
			}
			continue
		case 'H':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				b.HRaw = v
				hv := *v * unit()
				b.H = &hv
			}
			continue
		case 'X', 'Y', 'Z':
			i++
			v, n := parseFloat(bytes[i:])
			i += n
			if v != nil {
				b.AxisWords = append(b.AxisWords, AxisWord{Label: string(upper), Value: *v * unit()})
			}
			continue
		}

		// Fallback: a single-character custom axis label with no
		// multi-character prefix match (e.g. a bare "A" axis).
		if label, ok := matchLabel(bytes[i:], labelsOfLenOne(knownLabels)); ok {
			i += len(label)
			v, n := parseFloat(bytes[i:])
			if n > 0 && v != nil {
				b.AxisWords = append(b.AxisWords, AxisWord{Label: label, Value: *v * unit()})
			}
			i += n
			continue
		}

		// Unrecognized byte: advance one and keep scanning. No block is
		// ever rejected outright.
		i++
	}

	return b
}

func labelsOfLenOne(labels []AxisLabel) []AxisLabel {
	out := make([]AxisLabel, 0, len(labels))
	for _, l := range labels {
		if len(l.Label) == 1 && l.Label != "X" && l.Label != "Y" && l.Label != "Z" {
			out = append(out, l)
		}
	}
	return out
}

func matchLabel(rest []byte, labels []AxisLabel) (string, bool) {
	for _, l := range labels {
		if len(rest) >= len(l.Label) && strings.EqualFold(string(rest[:len(l.Label)]), l.Label) {
			return l.Label, true
		}
	}
	return "", false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func round(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

// parseFloat parses a leading numeric literal: optional sign, digits, at
// most one decimal point, no exponent. Whitespace between letter and
// number is skipped first, per the dialect's permissive word-address
// spacing. If no valid literal follows, it returns nil and the number of
// whitespace bytes skipped.
func parseFloat(bytes []byte) (*float64, int) {
	i := 0
	for i < len(bytes) && isSpace(bytes[i]) {
		i++
	}
	if i >= len(bytes) {
		return nil, i
	}

	start := i
	end := i
	if bytes[end] == '+' || bytes[end] == '-' {
		end++
	}
	hasDigit := false
	hasDot := false
	for end < len(bytes) {
		c := bytes[end]
		if c >= '0' && c <= '9' {
			hasDigit = true
			end++
			continue
		}
		if c == '.' && !hasDot {
			hasDot = true
			end++
			continue
		}
		break
	}
	if !hasDigit || end <= start {
		return nil, start
	}
	v, err := strconv.ParseFloat(string(bytes[start:end]), 64)
	if err != nil {
		return nil, start
	}
	return &v, end
}
