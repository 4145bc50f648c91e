/*
 * cncbrain - Configuration file parser
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

// Package configparser loads the machine's startup configuration: axes,
// channels and homing order, declared one directive per line.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/rcornwell/cncbrain/internal/machine"
)

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <directive> <whitespace> *(<word> <whitespace>)
 * <directive> := 'AXIS' | 'CHANNEL' | 'HOMING' | <registered directive>
 *
 * AXIS <name> <linear|rotary> <min> <max>
 * CHANNEL <id> *(<axis-id> <label>)
 * HOMING <rapid|feed> [<feed-value>] *(<axis-id>)
 *
 * HOMING homes the first listed axis first and then every other axis in
 * declaration order; axis ids after the first do not change the order.
 * With no axis id it runs HomeAll, which ignores rapid|feed and the feed
 * value.
 */

// directiveDef is one registered line handler.
type directiveDef struct {
	create func(*machine.Machine, []string) error
}

var directives = map[string]directiveDef{}

var lineNumber int

// RegisterDirective adds a config-file directive. Called from init
// functions so a directive's handler lives next to the thing it
// configures.
func RegisterDirective(name string, fn func(*machine.Machine, []string) error) {
	directives[strings.ToUpper(name)] = directiveDef{create: fn}
}

func init() {
	RegisterDirective("AXIS", directiveAxis)
	RegisterDirective("CHANNEL", directiveChannel)
	RegisterDirective("HOMING", directiveHoming)
}

// LoadConfigFile reads name line by line and applies each directive to m.
func LoadConfigFile(name string, m *machine.Machine) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		raw, err := reader.ReadString('\n')
		lineNumber++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if perr := parseLine(raw, m); perr != nil {
			return perr
		}
		if err != nil {
			break
		}
	}
	return nil
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseLine(raw string, m *machine.Machine) error {
	line := strings.TrimSpace(stripComment(raw))
	if line == "" {
		return nil
	}
	fields := splitFields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToUpper(fields[0])
	d, ok := directives[name]
	if !ok {
		return fmt.Errorf("unknown directive %q, line %d", fields[0], lineNumber)
	}
	if err := d.create(m, fields[1:]); err != nil {
		return fmt.Errorf("line %d: %w", lineNumber, err)
	}
	return nil
}

// splitFields tokenizes on runs of whitespace, the way the line scanner
// does it elsewhere in this package family.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	for _, r := range line {
		if unicode.IsSpace(r) {
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

func directiveAxis(m *machine.Machine, args []string) error {
	if len(args) < 4 {
		return errors.New("AXIS requires name kind min max")
	}
	name := args[0]
	kind := machine.Linear
	if strings.EqualFold(args[1], "rotary") {
		kind = machine.Rotary
	}
	min, err := parseFloatArg(args[2])
	if err != nil {
		return err
	}
	max, err := parseFloatArg(args[3])
	if err != nil {
		return err
	}
	m.AddAxis(name, kind, min, max)
	return nil
}

func directiveChannel(m *machine.Machine, args []string) error {
	if len(args) < 1 {
		return errors.New("CHANNEL requires an id")
	}
	id, err := parseIntArg(args[0])
	if err != nil {
		return err
	}
	rest := args[1:]
	if len(rest)%2 != 0 {
		return errors.New("CHANNEL axis mappings must come in (id label) pairs")
	}
	var mappings []machine.ChannelAxisMap
	for i := 0; i < len(rest); i += 2 {
		axisID, err := parseIntArg(rest[i])
		if err != nil {
			return err
		}
		mappings = append(mappings, machine.ChannelAxisMap{AxisID: axisID, DisplayLabel: rest[i+1]})
	}
	m.AddChannel(id, mappings)
	return nil
}

func directiveHoming(m *machine.Machine, args []string) error {
	if len(args) < 1 {
		return errors.New("HOMING requires rapid|feed")
	}
	rapid := strings.EqualFold(args[0], "rapid")
	feed := 300.0
	rest := args[1:]
	if len(rest) > 0 {
		if v, err := parseFloatArg(rest[0]); err == nil {
			feed = v
			rest = rest[1:]
		}
	}
	var order []int
	for _, a := range rest {
		id, err := parseIntArg(a)
		if err != nil {
			return err
		}
		order = append(order, id)
	}
	if len(order) == 0 {
		m.HomeAll()
		return nil
	}
	m.HomeAllOrdered(order[0], rapid, feed)
	return nil
}

func parseFloatArg(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseIntArg(s string) (int, error) {
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}
