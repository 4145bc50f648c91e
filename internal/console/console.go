/*
 * cncbrain - Operator console command parser.
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

// Package console implements an abbreviation-matching operator command
// line over the machine core, mirroring the line-editor-driven control
// console the host binds to a terminal.
package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcornwell/cncbrain/internal/machine"
)

type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line)
}

func (l *cmdLine) getWord() string {
	for !l.isEOL() && l.line[l.pos] == ' ' {
		l.pos++
	}
	start := l.pos
	for !l.isEOL() && l.line[l.pos] != ' ' {
		l.pos++
	}
	return l.line[start:l.pos]
}

func (l *cmdLine) getInt() (int, error) {
	w := l.getWord()
	if w == "" {
		return 0, errors.New("expected a number")
	}
	return strconv.Atoi(w)
}

func (l *cmdLine) getFloat() (float64, error) {
	w := l.getWord()
	if w == "" {
		return 0, errors.New("expected a number")
	}
	return strconv.ParseFloat(w, 64)
}

func (l *cmdLine) getBool() (bool, error) {
	w := strings.ToLower(l.getWord())
	switch w {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on/off, got %q", w)
}

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *machine.Machine) (string, error)
}

var cmdList = []cmd{
	{"addaxis", 4, cmdAddAxis},
	{"addchannel", 4, cmdAddChannel},
	{"load", 2, cmdLoad},
	{"pause", 2, cmdPause},
	{"reset", 2, cmdReset},
	{"override", 2, cmdOverride},
	{"single", 2, cmdSingle},
	{"step", 2, cmdStep},
	{"jump", 2, cmdJump},
	{"toollength", 5, cmdToolLength},
	{"toolradius", 5, cmdToolRadius},
	{"tooltable", 5, cmdToolTable},
	{"tool", 2, cmdTool},
	{"comp", 2, cmdComp},
	{"move", 2, cmdMove},
	{"jog", 2, cmdJog},
	{"jograpid", 4, cmdJogRapid},
	{"homeall", 5, cmdHomeAll},
	{"home", 2, cmdHome},
	{"zero", 2, cmdZero},
	{"wcs", 2, cmdWCS},
	{"offset", 2, cmdOffset},
	{"estop", 2, cmdEstop},
	{"accel", 2, cmdAccel},
	{"machinezero", 3, cmdMachineZero},
	{"invert", 2, cmdInvert},
	{"tick", 2, cmdTick},
	{"show", 2, cmdShow},
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var out []cmd
	for _, c := range cmdList {
		if len(name) < c.min {
			continue
		}
		if strings.HasPrefix(c.name, name) {
			out = append(out, c)
		}
	}
	return out
}

// Process executes one operator command line against m, returning
// human-readable output.
func Process(commandLine string, m *machine.Machine) (string, error) {
	l := cmdLine{line: strings.TrimSpace(commandLine)}
	if l.line == "" {
		return "", nil
	}
	name := strings.ToLower(l.getWord())
	match := matchList(name)
	if len(match) == 0 {
		return "", fmt.Errorf("command not found: %s", name)
	}
	if len(match) > 1 {
		return "", fmt.Errorf("ambiguous command: %s", name)
	}
	return match[0].process(&l, m)
}

func cmdAddAxis(l *cmdLine, m *machine.Machine) (string, error) {
	name := l.getWord()
	kindWord := strings.ToLower(l.getWord())
	min, err := l.getFloat()
	if err != nil {
		return "", err
	}
	max, err := l.getFloat()
	if err != nil {
		return "", err
	}
	kind := machine.Linear
	if kindWord == "rotary" {
		kind = machine.Rotary
	}
	id := m.AddAxis(name, kind, min, max)
	return fmt.Sprintf("axis %d added", id), nil
}

func cmdAddChannel(l *cmdLine, m *machine.Machine) (string, error) {
	id, err := l.getInt()
	if err != nil {
		return "", err
	}
	var mappings []machine.ChannelAxisMap
	for !l.isEOL() {
		axisID, err := l.getInt()
		if err != nil {
			break
		}
		label := l.getWord()
		mappings = append(mappings, machine.ChannelAxisMap{AxisID: axisID, DisplayLabel: label})
	}
	m.AddChannel(id, mappings)
	return fmt.Sprintf("channel %d added", id), nil
}

func cmdLoad(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	code := strings.TrimSpace(l.line[l.pos:])
	m.LoadProgram(ch, code)
	return "program loaded", nil
}

func cmdPause(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.TogglePause(ch)
	return "pause toggled", nil
}

func cmdReset(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.ResetProgram(ch)
	return "program reset", nil
}

func cmdOverride(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	v, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetFeedOverride(ch, v)
	return "feed override set", nil
}

func cmdSingle(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	on, err := l.getBool()
	if err != nil {
		return "", err
	}
	m.SetSingleBlock(ch, on)
	return "single block set", nil
}

func cmdStep(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.StepOnce(ch)
	return "step armed", nil
}

func cmdJump(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	delta, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.JumpBlocks(ch, delta)
	return "pc jumped", nil
}

func cmdToolLength(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	v, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetToolLength(ch, v)
	return "tool length set", nil
}

func cmdToolRadius(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	v, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetToolRadius(ch, v)
	return "tool radius set", nil
}

func cmdToolTable(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	slot, err := l.getInt()
	if err != nil {
		return "", err
	}
	length, err := l.getFloat()
	if err != nil {
		return "", err
	}
	radius, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetToolTableEntry(ch, slot, length, radius)
	return "tool table entry set", nil
}

func cmdTool(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	slot, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.SetActiveTool(ch, slot)
	return "active tool set", nil
}

func cmdComp(l *cmdLine, m *machine.Machine) (string, error) {
	ch, err := l.getInt()
	if err != nil {
		return "", err
	}
	mode, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.SetCutterComp(ch, mode)
	return "cutter comp set", nil
}

func cmdMove(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	target, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.MoveTo(axis, target)
	return "move commanded", nil
}

func cmdJog(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	delta, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.JogAxis(axis, delta)
	return "jogged", nil
}

func cmdJogRapid(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	delta, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.JogAxisRapid(axis, delta)
	return "jogged rapid", nil
}

func cmdHomeAll(l *cmdLine, m *machine.Machine) (string, error) {
	m.HomeAll()
	return "homing all axes", nil
}

func cmdHome(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.HomeAxis(axis)
	return "homing axis", nil
}

func cmdZero(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	wcs, err := l.getInt()
	if err != nil {
		return "", err
	}
	pos, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetWorkZero(axis, wcs, pos)
	return "work zero set", nil
}

func cmdWCS(l *cmdLine, m *machine.Machine) (string, error) {
	idx, err := l.getInt()
	if err != nil {
		return "", err
	}
	m.SetActiveWCS(idx)
	return "active wcs set", nil
}

func cmdOffset(l *cmdLine, m *machine.Machine) (string, error) {
	label := l.getWord()
	idx := m.AddWorkOffset(label)
	return fmt.Sprintf("offset %d added", idx), nil
}

func cmdEstop(l *cmdLine, m *machine.Machine) (string, error) {
	on, err := l.getBool()
	if err != nil {
		return "", err
	}
	m.SetEstop(on)
	return "estop set", nil
}

func cmdAccel(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	v, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetAxisAccel(axis, v)
	return "accel set", nil
}

func cmdMachineZero(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	v, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.SetAxisMachineZero(axis, v)
	return "machine zero set", nil
}

func cmdInvert(l *cmdLine, m *machine.Machine) (string, error) {
	axis, err := l.getInt()
	if err != nil {
		return "", err
	}
	on, err := l.getBool()
	if err != nil {
		return "", err
	}
	m.SetAxisInvert(axis, on)
	return "invert set", nil
}

func cmdTick(l *cmdLine, m *machine.Machine) (string, error) {
	dt, err := l.getFloat()
	if err != nil {
		return "", err
	}
	m.Tick(dt)
	return "", nil
}

func cmdShow(l *cmdLine, m *machine.Machine) (string, error) {
	s := m.GetFullState()
	var sb strings.Builder
	fmt.Fprintf(&sb, "estop=%v homing=%v wcs=%d\n", s.Estop, s.IsHoming, s.ActiveWCS)
	for _, ax := range s.Axes {
		fmt.Fprintf(&sb, "axis %d %-8s pos=%.4f target=%.4f vel=%.2f homed=%v\n",
			ax.ID, ax.PhysicalName, ax.Position, ax.Target, ax.Velocity, ax.Homed)
	}
	for _, c := range s.Channels {
		fmt.Fprintf(&sb, "channel %d running=%v paused=%v pc=%d feed=%.2f comp=%d\n",
			c.ID, c.IsRunning, c.Paused, c.PC, c.FeedRate, c.CutterComp)
	}
	return sb.String(), nil
}
