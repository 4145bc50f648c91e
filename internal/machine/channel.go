/*
 * cncbrain - Channel modal state and program execution record.
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

// ChannelAxisMap associates one of the channel's axes with the label used
// to address it in G-code (normally the axis's own name, but a channel may
// declare its own display label).
type ChannelAxisMap struct {
	AxisID       int
	DisplayLabel string
}

// ToolTableEntry holds one tool's radius and length.
type ToolTableEntry struct {
	Radius float64
	Length float64
}

// CompLinearState records the previous CRC-compensated linear segment so
// the next block can detect and join corners.
type CompLinearState struct {
	EndProgX, EndProgY float64
	EndOffX, EndOffY   float64
	DirX, DirY         float64
	Mode               int // 41 or 42
	Radius             float64
}

// Channel is one independent program-execution context: modal state, a
// program, a segment queue and the CRC continuity record.
type Channel struct {
	ID      int
	AxisMap []ChannelAxisMap

	IsRunning bool
	Paused    bool

	PC       int
	ActivePC int // -1 when none

	Program []string

	FeedRate      float64
	CurrentMotion int // 0,1,2,3
	AbsMode       bool
	UnitsMM       bool
	Plane         int
	ExactStop     bool

	CutterComp       int // 40, 41, 42
	ToolRadius       float64
	LengthCompActive bool
	ToolLength       float64
	ActiveTool       int
	ActiveD          int
	ActiveH          int

	SpindleRPM  float64
	SpindleMode int // 3,4,5
	CoolantOn   bool

	FeedOverride float64
	SingleBlock  bool
	StepOnce     bool
	PausePending bool

	ToolTable map[int]ToolTableEntry

	CompLinearPrev   *CompLinearState
	CompEntryPending bool

	Pending [][]AxisTarget

	// ProgrammedWork is the last uncompensated work-space coordinate per
	// axis, seeded lazily from physical position on first use.
	ProgrammedWork map[int]float64
}

// AxisTarget is one axis's machine-space target within an enqueued segment.
type AxisTarget struct {
	AxisID int
	Target float64
}

func newChannel(id int, mappings []ChannelAxisMap) *Channel {
	return &Channel{
		ID:            id,
		AxisMap:       mappings,
		IsRunning:     false,
		Paused:        false,
		PC:            0,
		ActivePC:      -1,
		Program:       nil,
		FeedRate:      1000,
		CurrentMotion: 0,
		AbsMode:       true,
		UnitsMM:       true,
		Plane:         17,
		ExactStop:     false,

		CutterComp:       40,
		ToolRadius:       4.0,
		LengthCompActive: false,
		ToolLength:       50.0,
		ActiveTool:       0,
		ActiveD:          0,
		ActiveH:          0,

		SpindleRPM:  0,
		SpindleMode: 5,
		CoolantOn:   false,

		FeedOverride: 1.0,
		SingleBlock:  false,
		StepOnce:     false,
		PausePending: false,

		ToolTable: map[int]ToolTableEntry{
			0: {Radius: 4.0, Length: 50.0},
			1: {Radius: 4.0, Length: 50.0},
		},

		CompLinearPrev:   nil,
		CompEntryPending: false,

		Pending:        nil,
		ProgrammedWork: make(map[int]float64),
	}
}

// resetExecutionState applies the shared reset performed by load and by
// program reset: clears run cursors, step/pause-pending, the motion mode
// (back to G0), the programmed-work cache, CRC continuity and the segment
// queue. The program text is left untouched.
func (c *Channel) resetExecutionState() {
	c.PC = 0
	c.ActivePC = -1
	c.CurrentMotion = 0
	c.StepOnce = false
	c.PausePending = false
	c.ProgrammedWork = make(map[int]float64)
	c.CompLinearPrev = nil
	c.CompEntryPending = false
	c.Pending = nil
}

func (c *Channel) hasAxis(axisID int) bool {
	for _, m := range c.AxisMap {
		if m.AxisID == axisID {
			return true
		}
	}
	return false
}

func (c *Channel) labelFor(axisID int) (string, bool) {
	for _, m := range c.AxisMap {
		if m.AxisID == axisID {
			return m.DisplayLabel, true
		}
	}
	return "", false
}

func (c *Channel) axisIDFor(label string) (int, bool) {
	for _, m := range c.AxisMap {
		if m.DisplayLabel == label {
			return m.AxisID, true
		}
	}
	return 0, false
}
