/*
 * cncbrain - Machine core test set.
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
	"testing"
)

func approxEq(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.6f, got %.6f (|diff|=%.6f)", want, got, math.Abs(got-want))
	}
}

func makeXYZMachine() *Machine {
	m := New()
	x := m.AddAxis("X", Linear, -10000, 10000)
	y := m.AddAxis("Y", Linear, -10000, 10000)
	z := m.AddAxis("Z", Linear, -10000, 10000)
	m.AddChannel(0, []ChannelAxisMap{
		{AxisID: x, DisplayLabel: "X"},
		{AxisID: y, DisplayLabel: "Y"},
		{AxisID: z, DisplayLabel: "Z"},
	})
	return m
}

func findTarget(seg []AxisTarget, axisID int) (float64, bool) {
	for _, t := range seg {
		if t.AxisID == axisID {
			return t.Target, true
		}
	}
	return 0, false
}

func TestG41OffsetsLeftAndDoesNotAccumulateOnStraightPath(t *testing.T) {
	m := makeXYZMachine()

	m.ParseLine(0, "G90 G21 G40")
	m.ParseLine(0, "G1 X0 Y0")
	m.ParseLine(0, "G41 D2 G1 X10 Y0")
	approxEq(t, m.Axes[0].Target, 10.0)
	approxEq(t, m.Axes[1].Target, 2.0)

	m.ParseLine(0, "G1 X20 Y0")
	approxEq(t, m.Axes[0].Target, 20.0)
	approxEq(t, m.Axes[1].Target, 2.0)
	approxEq(t, m.Channels[0].ProgrammedWork[1], 0.0)
}

func TestG42OffsetsRightOnStraightPath(t *testing.T) {
	m := makeXYZMachine()

	m.ParseLine(0, "G90 G21 G40")
	m.ParseLine(0, "G1 X0 Y0")
	m.ParseLine(0, "G42 D2 G1 X10 Y0")
	approxEq(t, m.Axes[0].Target, 10.0)
	approxEq(t, m.Axes[1].Target, -2.0)
}

func TestG41G42ArcSideIsConsistent(t *testing.T) {
	// Start at +X on a 10mm radius circle centered at 0,0. CCW quarter arc
	// to +Y. G41 (left of travel) offsets inward on a CCW circle, G42
	// (right of travel) offsets outward.
	left := makeXYZMachine()
	left.ParseLine(0, "G90 G21 G40")
	left.ParseLine(0, "G1 X10 Y0")
	left.ParseLine(0, "G41 D2 G3 X0 Y10 I-10 J0")
	lastL := left.Channels[0].Pending[len(left.Channels[0].Pending)-1]
	gy, ok := findTarget(lastL, 1)
	if !ok {
		t.Fatalf("expected Y target in final G41 arc segment")
	}
	approxEq(t, gy, 8.0)

	right := makeXYZMachine()
	right.ParseLine(0, "G90 G21 G40")
	right.ParseLine(0, "G1 X10 Y0")
	right.ParseLine(0, "G42 D2 G3 X0 Y10 I-10 J0")
	lastR := right.Channels[0].Pending[len(right.Channels[0].Pending)-1]
	gy2, ok := findTarget(lastR, 1)
	if !ok {
		t.Fatalf("expected Y target in final G42 arc segment")
	}
	approxEq(t, gy2, 12.0)
}

func TestG40CancelReturnsToProgrammedPath(t *testing.T) {
	m := makeXYZMachine()

	m.ParseLine(0, "G90 G21 G40")
	m.ParseLine(0, "G1 X0 Y0")
	m.ParseLine(0, "G41 D2 G1 X10 Y0")
	approxEq(t, m.Axes[1].Target, 2.0)

	m.ParseLine(0, "G40 G1 X20 Y0")
	approxEq(t, m.Axes[0].Target, 20.0)
	// G40 with axis motion keeps previous comp for this block.
	approxEq(t, m.Axes[1].Target, 2.0)

	// Next block runs uncompensated.
	m.ParseLine(0, "G1 X30 Y0")
	approxEq(t, m.Axes[0].Target, 30.0)
	approxEq(t, m.Axes[1].Target, 0.0)
}

func TestG40OnMotionUsesPreviousCompForThatBlock(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G40")
	m.ParseLine(0, "G1 X0 Y0")
	m.ParseLine(0, "G41 D2 G1 X10 Y0")
	approxEq(t, m.Axes[1].Target, 2.0)

	// Cancel on a motion block: this block still runs compensated, then
	// comp turns off.
	m.ParseLine(0, "G1 G40 X20 Y0")
	approxEq(t, m.Axes[0].Target, 20.0)
	approxEq(t, m.Axes[1].Target, 2.0)
	if m.Channels[0].CutterComp != 40 {
		t.Errorf("expected cutter comp 40, got %d", m.Channels[0].CutterComp)
	}
}

func TestG41WithoutAxisWordsIsModalOnlyAndDoesNotMove(t *testing.T) {
	m := makeXYZMachine()

	m.ParseLine(0, "G90 G21 G1 X5 Y6 Z7")
	approxEq(t, m.Axes[0].Target, 5.0)
	approxEq(t, m.Axes[1].Target, 6.0)
	approxEq(t, m.Axes[2].Target, 7.0)

	m.ParseLine(0, "G41 D3")
	approxEq(t, m.Axes[0].Target, 5.0)
	approxEq(t, m.Axes[1].Target, 6.0)
	approxEq(t, m.Axes[2].Target, 7.0)
	if m.Channels[0].CutterComp != 41 {
		t.Errorf("expected cutter comp 41, got %d", m.Channels[0].CutterComp)
	}
	approxEq(t, m.Channels[0].ToolRadius, 3.0)
}

func TestG41ArmedOnZMoveEngagesOnNextXYFeedMove(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G40")
	m.ParseLine(0, "G0 X10 Y-10")
	m.ParseLine(0, "G41 D3 G1 Z-5")
	if m.Channels[0].CutterComp != 41 {
		t.Errorf("expected cutter comp 41, got %d", m.Channels[0].CutterComp)
	}
	if !m.Channels[0].CompEntryPending {
		t.Fatalf("expected comp entry pending after Z-only compensated block")
	}

	m.ParseLine(0, "G1 X50 Y-10")
	if m.Channels[0].CompEntryPending {
		t.Fatalf("expected comp entry pending cleared after entry transition")
	}

	// First target is the entry point on the offset line.
	approxEq(t, m.Axes[0].Target, 10.0)
	approxEq(t, m.Axes[1].Target, -7.0)

	// Then the queued final target follows the offset contour.
	pending := m.Channels[0].Pending
	if len(pending) == 0 {
		t.Fatalf("expected a queued final segment")
	}
	final := pending[len(pending)-1]
	fx, _ := findTarget(final, 0)
	fy, _ := findTarget(final, 1)
	approxEq(t, fx, 50.0)
	approxEq(t, fy, -7.0)
}

func TestRepeatedG41OnEngageBlockKeepsPendingEntryBehavior(t *testing.T) {
	m := makeXYZMachine()
	m.SetToolRadius(0, 10.0)
	m.ParseLine(0, "G90 G21 G40")
	m.ParseLine(0, "G0 X-10 Y-40")
	// Arm comp on a non-XY block.
	m.ParseLine(0, "G41 Z-5")
	if !m.Channels[0].CompEntryPending {
		t.Fatalf("expected comp entry pending after Z-only compensated block")
	}

	// Repeating G41 on the first XY feed block still performs the entry
	// transition.
	m.ParseLine(0, "G1 G41 H0 X0 Y-50 F200")
	if m.Channels[0].CompEntryPending {
		t.Fatalf("expected comp entry pending cleared")
	}
	if len(m.Channels[0].Pending) == 0 {
		t.Fatalf("expected queued final segment after entry transition")
	}
	approxEq(t, m.Axes[0].Target, -2.9289321881345254)
	approxEq(t, m.Axes[1].Target, -32.928932188134524)
}

func TestD0UsesToolTableSlotZeroRadius(t *testing.T) {
	m := makeXYZMachine()
	m.SetToolRadius(0, 4.0)

	m.ParseLine(0, "G90 G21 G1 X0 Y0")
	m.ParseLine(0, "G41 D0 G1 X10 Y0")

	approxEq(t, m.Channels[0].ToolRadius, 4.0)
	approxEq(t, m.Axes[1].Target, 4.0)
}

func TestH0UsesToolTableSlotZeroLength(t *testing.T) {
	m := makeXYZMachine()
	m.SetToolLength(0, 50.0)

	m.ParseLine(0, "G90 G21 G43 H0 G1 Z0")

	approxEq(t, m.Channels[0].ToolLength, 50.0)
	approxEq(t, m.Axes[2].Target, 50.0)
}

func TestT0UnloadsToolAndCancelsComp(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21")
	m.ParseLine(0, "G43 H1")
	m.ParseLine(0, "G41 D1")
	if m.Channels[0].ActiveTool != 0 {
		t.Errorf("expected active tool 0, got %d", m.Channels[0].ActiveTool)
	}
	if !m.Channels[0].LengthCompActive {
		t.Fatalf("expected length comp active")
	}
	if m.Channels[0].CutterComp != 41 {
		t.Errorf("expected cutter comp 41, got %d", m.Channels[0].CutterComp)
	}

	m.ParseLine(0, "T0")
	if m.Channels[0].ActiveTool != 0 {
		t.Errorf("expected active tool 0 after T0, got %d", m.Channels[0].ActiveTool)
	}
	approxEq(t, m.Channels[0].ToolLength, 0.0)
	approxEq(t, m.Channels[0].ToolRadius, 0.0)
	if m.Channels[0].LengthCompActive {
		t.Fatalf("expected length comp disabled after T0")
	}
	if m.Channels[0].CutterComp != 40 {
		t.Errorf("expected cutter comp 40 after T0, got %d", m.Channels[0].CutterComp)
	}
}

func TestCompUpdatesOrthogonalAxisAndInsertsCornerTransition(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G40 G1 X0 Y0")
	m.ParseLine(0, "G41 D1 G1 X10")
	// First compensated single-axis block inserts an entry point onto the
	// offset line.
	approxEq(t, m.Axes[0].Target, 0.0)
	approxEq(t, m.Axes[1].Target, 4.0)
	pending := m.Channels[0].Pending
	if len(pending) == 0 {
		t.Fatalf("expected a queued final entry move")
	}
	firstFinal := pending[len(pending)-1]
	x1, _ := findTarget(firstFinal, 0)
	y1, _ := findTarget(firstFinal, 1)
	approxEq(t, x1, 10.0)
	approxEq(t, y1, 4.0)

	m.Axes[0].Position = 10.0
	m.Axes[1].Position = 4.0
	m.ParseLine(0, "G1 Y10")

	// Inside corner uses a miter join at the intersection (6,4), then the
	// final endpoint (6,10).
	approxEq(t, m.Axes[0].Target, 6.0)
	approxEq(t, m.Axes[1].Target, 4.0)
	pending = m.Channels[0].Pending
	if len(pending) == 0 {
		t.Fatalf("expected a queued final segment")
	}
	last := pending[len(pending)-1]
	x, _ := findTarget(last, 0)
	y, _ := findTarget(last, 1)
	approxEq(t, x, 6.0)
	approxEq(t, y, 10.0)
}

func TestG20G21UnitsModalScalesCoordinates(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G1 X10")
	approxEq(t, m.Axes[0].Target, 10.0)

	m.ParseLine(0, "G20 G1 X1")
	approxEq(t, m.Axes[0].Target, 25.4)

	m.ParseLine(0, "G21 G1 X2")
	approxEq(t, m.Axes[0].Target, 2.0)
}

func TestG90G91DistanceModeSwitchesAbsoluteIncremental(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G1 X10")
	approxEq(t, m.Axes[0].Target, 10.0)

	m.ParseLine(0, "G91 G1 X5")
	approxEq(t, m.Axes[0].Target, 15.0)

	m.ParseLine(0, "G91 G1 X-2")
	approxEq(t, m.Axes[0].Target, 13.0)

	m.ParseLine(0, "G90 G1 X7")
	approxEq(t, m.Axes[0].Target, 7.0)
}

func TestParserAcceptsSpacesAfterWordAddress(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G1 X 10 Y -5 Z 2")
	approxEq(t, m.Axes[0].Target, 10.0)
	approxEq(t, m.Axes[1].Target, -5.0)
	approxEq(t, m.Axes[2].Target, 2.0)
}

func TestFeedRateIsModalUntilChanged(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 F1200")
	approxEq(t, m.Channels[0].FeedRate, 1200.0)

	m.ParseLine(0, "G1 X10")
	approxEq(t, m.Channels[0].FeedRate, 1200.0)

	m.ParseLine(0, "F800")
	approxEq(t, m.Channels[0].FeedRate, 800.0)
}

func TestEstopClearsPendingQueueAndFreezesTargets(t *testing.T) {
	m := makeXYZMachine()
	m.ParseLine(0, "G90 G21 G1 X10 Y0")
	m.ParseLine(0, "G2 X0 Y10 I-10 J0")
	if len(m.Channels[0].Pending) == 0 {
		t.Fatalf("expected pending segments before estop")
	}
	m.Axes[0].Position = 3.2
	m.Axes[1].Position = -1.4
	m.Axes[2].Position = 7.0

	m.SetEstop(true)
	if len(m.Channels[0].Pending) != 0 {
		t.Fatalf("pending queue must be cleared")
	}
	approxEq(t, m.Axes[0].Target, 3.2)
	approxEq(t, m.Axes[1].Target, -1.4)
	approxEq(t, m.Axes[2].Target, 7.0)
}
