/*
 * cncbrain - Operator console command parser tests.
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

package console

import (
	"strings"
	"testing"

	"github.com/rcornwell/cncbrain/internal/machine"
)

func newTestMachine() *machine.Machine {
	m := machine.New()
	m.AddAxis("X", machine.Linear, -10000, 10000)
	m.AddAxis("Y", machine.Linear, -10000, 10000)
	m.AddAxis("Z", machine.Linear, -10000, 10000)
	m.AddChannel(0, []machine.ChannelAxisMap{
		{AxisID: 0, DisplayLabel: "X"},
		{AxisID: 1, DisplayLabel: "Y"},
		{AxisID: 2, DisplayLabel: "Z"},
	})
	return m
}

func mustProcess(t *testing.T, m *machine.Machine, line string) string {
	t.Helper()
	reply, err := Process(line, m)
	if err != nil {
		t.Fatalf("Process(%q): %v", line, err)
	}
	return reply
}

func TestProcessEmptyLineIsNoop(t *testing.T) {
	m := newTestMachine()
	reply, err := Process("   ", m)
	if err != nil || reply != "" {
		t.Fatalf("expected no-op on blank line, got %q %v", reply, err)
	}
}

func TestProcessUnknownCommandErrors(t *testing.T) {
	m := newTestMachine()
	if _, err := Process("bogus 1 2", m); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestProcessShortAbbreviationBelowMinimumIsUnknown(t *testing.T) {
	m := newTestMachine()
	// "j" is shorter than every command's minimum match length.
	if _, err := Process("j 0 0", m); err == nil {
		t.Fatalf("expected command-not-found error for too-short abbreviation")
	}
}

func TestProcessAddAxisAndAddChannel(t *testing.T) {
	m := machine.New()
	reply := mustProcess(t, m, "addaxis A rotary -9999 9999")
	if !strings.Contains(reply, "axis") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	reply = mustProcess(t, m, "addchannel 0 0 A")
	if !strings.Contains(reply, "channel") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	state := m.GetFullState()
	if len(state.Axes) != 1 || state.Axes[0].Kind != machine.Rotary {
		t.Fatalf("expected one rotary axis, got %+v", state.Axes)
	}
	if len(state.Channels) != 1 {
		t.Fatalf("expected one channel, got %+v", state.Channels)
	}
}

func TestProcessAbbreviatedCommandDispatches(t *testing.T) {
	m := newTestMachine()
	mustProcess(t, m, "est on")
	state := m.GetFullState()
	if !state.Estop {
		t.Fatalf("expected estop engaged via abbreviation")
	}
	mustProcess(t, m, "est off")
	state = m.GetFullState()
	if state.Estop {
		t.Fatalf("expected estop cleared via abbreviation")
	}
}

func TestProcessLoadAndShowReportsChannelState(t *testing.T) {
	m := newTestMachine()
	mustProcess(t, m, "load 0 G1 X10 Y10")
	reply := mustProcess(t, m, "show")
	if !strings.Contains(reply, "channel 0") {
		t.Fatalf("expected show to report channel 0, got %q", reply)
	}
}

func TestProcessMoveCommandsAxisTarget(t *testing.T) {
	m := newTestMachine()
	mustProcess(t, m, "move 0 500")
	state := m.GetFullState()
	if state.Axes[0].Target != 500 {
		t.Fatalf("expected axis 0 target 500, got %v", state.Axes[0].Target)
	}
}

func TestProcessBadNumberReturnsError(t *testing.T) {
	m := newTestMachine()
	if _, err := Process("move 0 notanumber", m); err == nil {
		t.Fatalf("expected error parsing bad float")
	}
}

func TestProcessHomeAllArmsHomingSequence(t *testing.T) {
	m := newTestMachine()
	mustProcess(t, m, "homeall")
	state := m.GetFullState()
	if !state.IsHoming {
		t.Fatalf("expected homing sequence armed")
	}
}
