/*
 * cncbrain - Top-level machine: axes, channels, WCS, e-stop, homing.
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

import "strings"

// Machine is the computational core: axes, independent channels, work
// offsets and the homing sequencer. It has no internal concurrency; every
// method call is a single cooperative step invoked by the host.
type Machine struct {
	Axes     []*Axis
	Channels []*Channel

	Estop bool

	WorkOffsets []WorkOffset
	ActiveWCS   int

	IsHoming       bool
	HomingSequence []int
	HomingIndex    int
	HomingFeed     float64
	HomingRapid    bool
}

// New builds an empty machine with the default WCS frame set.
func New() *Machine {
	return &Machine{
		Axes:        nil,
		Channels:    nil,
		Estop:       false,
		WorkOffsets: defaultWorkOffsets(),
		ActiveWCS:   0,
		HomingFeed:  300,
		HomingRapid: false,
	}
}

// ClearConfig resets the machine to its construction defaults, discarding
// every axis and channel.
func (m *Machine) ClearConfig() {
	*m = *New()
}

// AddAxis appends a new axis, growing every WCS frame with a zero offset
// for it. Returns the new axis's id.
func (m *Machine) AddAxis(name string, kind AxisKind, min, max float64) int {
	id := len(m.Axes)
	for i := range m.WorkOffsets {
		m.WorkOffsets[i].growForNewAxis(id)
	}
	m.Axes = append(m.Axes, newAxis(id, name, kind, min, max))
	return id
}

// AddChannel appends a new channel mapped to the given axes.
func (m *Machine) AddChannel(id int, mappings []ChannelAxisMap) {
	m.Channels = append(m.Channels, newChannel(id, mappings))
}

func (m *Machine) axis(id int) *Axis {
	if id < 0 || id >= len(m.Axes) {
		return nil
	}
	return m.Axes[id]
}

func (m *Machine) channel(index int) *Channel {
	if index < 0 || index >= len(m.Channels) {
		return nil
	}
	return m.Channels[index]
}

// LoadProgram installs code into the given channel and starts it running
// from the top, per §3's Lifecycle: program load resets pc, running
// flags, programmed-work cache and CRC continuity.
func (m *Machine) LoadProgram(channelIndex int, code string) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	lines := strings.Split(code, "\n")
	program := make([]string, 0, len(lines))
	for _, l := range lines {
		program = append(program, strings.ToUpper(strings.TrimSpace(l)))
	}
	c.Program = program
	c.resetExecutionState()
	c.IsRunning = true
	c.Paused = false
}

// TogglePause flips a running channel's paused flag.
func (m *Machine) TogglePause(channelIndex int) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	c.Paused = !c.Paused
}

// ResetProgram rewinds pc to 0 without touching the program text or the
// modal state other than the motion mode, which returns to G0, and stops
// the channel (it must be restarted explicitly).
func (m *Machine) ResetProgram(channelIndex int) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	c.resetExecutionState()
	c.IsRunning = false
	c.Paused = false
}

// SetFeedOverride clamps to [0,2] per invariant 3.
func (m *Machine) SetFeedOverride(channelIndex int, value float64) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	if value > 2 {
		value = 2
	}
	c.FeedOverride = value
}

func (m *Machine) SetSingleBlock(channelIndex int, on bool) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	c.SingleBlock = on
}

// StepOnce arms a single-step: a no-op unless the channel is running.
func (m *Machine) StepOnce(channelIndex int) {
	c := m.channel(channelIndex)
	if c == nil || !c.IsRunning {
		return
	}
	c.StepOnce = true
	c.Paused = false
}

// JumpBlocks repositions pc by delta, clamped to the program bounds, and
// clears queued work per §5's cancellation semantics for this command.
func (m *Machine) JumpBlocks(channelIndex int, delta int) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	pc := c.PC + delta
	if pc < 0 {
		pc = 0
	}
	if pc > len(c.Program) {
		pc = len(c.Program)
	}
	c.PC = pc
	if pc == 0 {
		c.ActivePC = -1
	} else {
		c.ActivePC = pc - 1
	}
	c.Pending = nil
	c.PausePending = false
	c.StepOnce = false
	c.Paused = true
	c.IsRunning = true
	for _, am := range c.AxisMap {
		if ax := m.axis(am.AxisID); ax != nil {
			ax.Velocity = 0
		}
	}
}

// SetToolLength sets the currently-active tool length (not a table slot).
func (m *Machine) SetToolLength(channelIndex int, length float64) {
	if c := m.channel(channelIndex); c != nil {
		c.ToolLength = length
	}
}

// SetToolRadius sets the currently-active tool radius (not a table slot).
func (m *Machine) SetToolRadius(channelIndex int, radius float64) {
	if c := m.channel(channelIndex); c != nil {
		c.ToolRadius = radius
	}
}

// SetToolLengthComp toggles G43/G49.
func (m *Machine) SetToolLengthComp(channelIndex int, active bool) {
	if c := m.channel(channelIndex); c != nil {
		c.LengthCompActive = active
	}
}

// SetToolTableEntry writes (or overwrites) one tool table slot. Writing
// slot 0 (or the slot matching the active tool) keeps the mirror intact.
func (m *Machine) SetToolTableEntry(channelIndex, slot int, length, radius float64) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	c.ToolTable[slot] = ToolTableEntry{Radius: radius, Length: length}
	if slot == c.ActiveTool {
		c.ToolTable[0] = ToolTableEntry{Radius: radius, Length: length}
	}
}

// SetActiveTool loads a tool table slot into the active tool and mirrors
// it into slot 0. T0 unloads: lengths/radii zero, length comp disabled,
// cutter comp reset to 40.
func (m *Machine) SetActiveTool(channelIndex, slot int) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	c.ActiveTool = slot
	if slot == 0 {
		c.ToolLength = 0
		c.ToolRadius = 0
		c.LengthCompActive = false
		c.CutterComp = 40
		c.ToolTable[0] = ToolTableEntry{Radius: 0, Length: 0}
		return
	}
	entry, ok := c.ToolTable[slot]
	if !ok {
		entry = ToolTableEntry{}
	}
	c.ToolLength = entry.Length
	c.ToolRadius = entry.Radius
	c.ToolTable[0] = entry
}

// SetCutterComp sets G40/G41/G42 directly (outside of inline block
// parsing) and always clears CRC continuity, per the original's distinct
// command-path behavior for this entry point.
func (m *Machine) SetCutterComp(channelIndex, mode int) {
	c := m.channel(channelIndex)
	if c == nil {
		return
	}
	c.CutterComp = mode
	c.CompLinearPrev = nil
	c.CompEntryPending = false
}

// MoveTo sets an axis's machine-space target directly, through the
// standard clamp/normalize filter.
func (m *Machine) MoveTo(axisID int, target float64) {
	if ax := m.axis(axisID); ax != nil {
		ax.SetTarget(target)
	}
}

// JogAxis nudges an axis's target by delta in machine space.
func (m *Machine) JogAxis(axisID int, delta float64) {
	if ax := m.axis(axisID); ax != nil {
		ax.SetTarget(ax.Target + delta)
	}
}

// JogAxisFeed jogs and also sets the feed used by any non-running channel
// mapping that axis, so a subsequent program start will not surprise the
// operator with a different feed than the jog used.
func (m *Machine) JogAxisFeed(axisID int, delta, feed float64) {
	m.JogAxis(axisID, delta)
	for _, c := range m.Channels {
		if !c.IsRunning && c.hasAxis(axisID) {
			c.FeedRate = feed
		}
	}
}

// JogAxisRapid jogs at the axis's derived rapid feed, and sets motion 0
// on any non-running channel mapping that axis.
func (m *Machine) JogAxisRapid(axisID int, delta float64) {
	ax := m.axis(axisID)
	if ax == nil {
		return
	}
	rapid := ax.RapidFeed()
	ax.SetTarget(ax.Target + delta)
	for _, c := range m.Channels {
		if !c.IsRunning && c.hasAxis(axisID) {
			c.CurrentMotion = 0
			c.FeedRate = rapid
		}
	}
}

// SetWorkZero sets the WCS offset for axisID in wcsIndex such that the
// given machine position reads as work-zero.
func (m *Machine) SetWorkZero(axisID, wcsIndex int, machinePos float64) {
	if wcsIndex < 0 || wcsIndex >= len(m.WorkOffsets) {
		return
	}
	m.WorkOffsets[wcsIndex].setOffsetFor(axisID, machinePos)
}

// SetActiveWCS selects the active work frame, bounds-checked.
func (m *Machine) SetActiveWCS(index int) {
	if index < 0 || index >= len(m.WorkOffsets) {
		return
	}
	m.ActiveWCS = index
}

// AddWorkOffset appends a new named frame with a zero offset per existing
// axis, returning its index.
func (m *Machine) AddWorkOffset(label string) int {
	wo := WorkOffset{Label: label}
	for _, ax := range m.Axes {
		wo.growForNewAxis(ax.ID)
	}
	m.WorkOffsets = append(m.WorkOffsets, wo)
	return len(m.WorkOffsets) - 1
}

// SetEstop is the universal cancel (§5): clears every channel's queue,
// pins targets to position, zeroes velocity, and disables running state.
func (m *Machine) SetEstop(stop bool) {
	m.Estop = stop
	if !stop {
		return
	}
	for _, c := range m.Channels {
		c.IsRunning = false
		c.Paused = false
		c.Pending = nil
		c.PausePending = false
		c.StepOnce = false
		c.ActivePC = -1
	}
	for _, ax := range m.Axes {
		ax.Target = ax.Position
		ax.Velocity = 0
	}
}

func (m *Machine) SetAxisAccel(axisID int, accel float64) {
	if ax := m.axis(axisID); ax != nil {
		ax.Accel = accel
	}
}

func (m *Machine) SetAxisMachineZero(axisID int, zero float64) {
	if ax := m.axis(axisID); ax != nil {
		ax.MachineZero = zero
	}
}

func (m *Machine) SetAxisInvert(axisID int, invert bool) {
	if ax := m.axis(axisID); ax != nil {
		ax.Invert = invert
	}
}

// wcsOffset returns the active frame's offset for axisID (0 if unmapped).
func (m *Machine) wcsOffset(axisID int) float64 {
	if m.ActiveWCS < 0 || m.ActiveWCS >= len(m.WorkOffsets) {
		return 0
	}
	return m.WorkOffsets[m.ActiveWCS].offsetFor(axisID)
}

func (m *Machine) machineToWork(axisID int, machineVal float64) float64 {
	return machineVal - m.wcsOffset(axisID)
}

func (m *Machine) workToMachine(axisID int, workVal float64) float64 {
	return workVal + m.wcsOffset(axisID)
}

// channelRapidFeed is the minimum rapid feed across a channel's mapped
// axes (§4.5), defaulting to the linear ceiling if unmapped.
func (m *Machine) channelRapidFeed(c *Channel) float64 {
	best := -1.0
	for _, am := range c.AxisMap {
		ax := m.axis(am.AxisID)
		if ax == nil {
			continue
		}
		f := ax.RapidFeed()
		if best < 0 || f < best {
			best = f
		}
	}
	if best < 0 {
		return 80000
	}
	return best
}

// machineTargetWithLimits applies §4.9's clamp/normalize.
func (m *Machine) machineTargetWithLimits(axisID int, machineTarget float64) float64 {
	ax := m.axis(axisID)
	if ax == nil {
		return machineTarget
	}
	return ax.ClampTarget(machineTarget)
}
