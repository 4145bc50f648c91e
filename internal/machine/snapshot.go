/*
 * cncbrain - Read-only state snapshot for external observers.
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

// AxisState is the read-only projection of one axis.
type AxisState struct {
	ID           int
	PhysicalName string
	Kind         AxisKind
	Position     float64
	Target       float64
	Velocity     float64
	Accel        float64
	MinRange     float64
	MaxRange     float64
	Homed        bool
	Invert       bool
	MachineZero  float64
}

// ChannelStatus is the read-only projection of one channel.
type ChannelStatus struct {
	ID          int
	AxisMap     []ChannelAxisMap
	IsRunning   bool
	Paused      bool
	PC          int
	ActivePC    int
	FeedRate    float64
	FeedOverride float64
	CurrentMotion int
	AbsMode     bool
	UnitsMM     bool
	CutterComp  int
	ToolRadius  float64
	ToolLength  float64
	LengthCompActive bool
	ActiveTool  int
	ActiveD     int
	ActiveH     int
	SpindleRPM  float64
	SpindleMode int
	CoolantOn   bool
	SingleBlock bool

	// ProgrammedWork mirrors AxisMap order, 0.0 for any axis with no
	// cached entry yet.
	ProgrammedWork []AxisOffset
}

// MachineState is the full snapshot returned by GetFullState.
type MachineState struct {
	Axes        []AxisState
	Channels    []ChannelStatus
	Estop       bool
	ActiveWCS   int
	WorkOffsets []WorkOffset
	IsHoming    bool
}

// GetFullState builds a read-only copy of the entire machine for an
// external observer (UI, logger, test). The core never hands out live
// pointers into its own state.
func (m *Machine) GetFullState() MachineState {
	axes := make([]AxisState, 0, len(m.Axes))
	for _, ax := range m.Axes {
		axes = append(axes, AxisState{
			ID:           ax.ID,
			PhysicalName: ax.PhysicalName,
			Kind:         ax.Kind,
			Position:     ax.Position,
			Target:       ax.Target,
			Velocity:     ax.Velocity,
			Accel:        ax.Accel,
			MinRange:     ax.MinRange,
			MaxRange:     ax.MaxRange,
			Homed:        ax.Homed,
			Invert:       ax.Invert,
			MachineZero:  ax.MachineZero,
		})
	}

	channels := make([]ChannelStatus, 0, len(m.Channels))
	for _, c := range m.Channels {
		pw := make([]AxisOffset, 0, len(c.AxisMap))
		for _, am := range c.AxisMap {
			v := c.ProgrammedWork[am.AxisID]
			pw = append(pw, AxisOffset{AxisID: am.AxisID, Offset: v})
		}
		channels = append(channels, ChannelStatus{
			ID:               c.ID,
			AxisMap:          append([]ChannelAxisMap(nil), c.AxisMap...),
			IsRunning:        c.IsRunning,
			Paused:           c.Paused,
			PC:               c.PC,
			ActivePC:         c.ActivePC,
			FeedRate:         c.FeedRate,
			FeedOverride:     c.FeedOverride,
			CurrentMotion:    c.CurrentMotion,
			AbsMode:          c.AbsMode,
			UnitsMM:          c.UnitsMM,
			CutterComp:       c.CutterComp,
			ToolRadius:       c.ToolRadius,
			ToolLength:       c.ToolLength,
			LengthCompActive: c.LengthCompActive,
			ActiveTool:       c.ActiveTool,
			ActiveD:          c.ActiveD,
			ActiveH:          c.ActiveH,
			SpindleRPM:       c.SpindleRPM,
			SpindleMode:      c.SpindleMode,
			CoolantOn:        c.CoolantOn,
			SingleBlock:      c.SingleBlock,
			ProgrammedWork:   pw,
		})
	}

	return MachineState{
		Axes:        axes,
		Channels:    channels,
		Estop:       m.Estop,
		ActiveWCS:   m.ActiveWCS,
		WorkOffsets: append([]WorkOffset(nil), m.WorkOffsets...),
		IsHoming:    m.IsHoming,
	}
}
