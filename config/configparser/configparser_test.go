/*
 * cncbrain - Configuration file parser test set.
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

package configparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/cncbrain/internal/machine"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	name := filepath.Join(dir, "cncbrain.conf")
	if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return name
}

func TestLoadConfigFileDeclaresAxesAndChannel(t *testing.T) {
	body := "AXIS X linear -10000 10000\n" +
		"AXIS Y linear -10000 10000\n" +
		"AXIS Z linear -5000 0\n" +
		"CHANNEL 0 0 X 1 Y 2 Z\n"
	name := writeTempConfig(t, body)

	m := machine.New()
	if err := LoadConfigFile(name, m); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	state := m.GetFullState()
	if len(state.Axes) != 3 {
		t.Fatalf("expected 3 axes, got %d", len(state.Axes))
	}
	if len(state.Channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(state.Channels))
	}
}

func TestLoadConfigFileIgnoresCommentsAndBlankLines(t *testing.T) {
	body := "# full line comment\n" +
		"\n" +
		"AXIS X linear -100 100   # trailing comment\n" +
		"   \n"
	name := writeTempConfig(t, body)

	m := machine.New()
	if err := LoadConfigFile(name, m); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	state := m.GetFullState()
	if len(state.Axes) != 1 {
		t.Fatalf("expected 1 axis, got %d", len(state.Axes))
	}
}

func TestLoadConfigFileRotaryAxis(t *testing.T) {
	body := "AXIS A rotary -9999 9999\n"
	name := writeTempConfig(t, body)

	m := machine.New()
	if err := LoadConfigFile(name, m); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	state := m.GetFullState()
	if len(state.Axes) != 1 || state.Axes[0].Kind != machine.Rotary {
		t.Fatalf("expected one rotary axis, got %+v", state.Axes)
	}
}

func TestLoadConfigFileUnknownDirectiveErrors(t *testing.T) {
	name := writeTempConfig(t, "BOGUS 1 2 3\n")
	m := machine.New()
	if err := LoadConfigFile(name, m); err == nil {
		t.Fatalf("expected error for unknown directive")
	}
}

func TestLoadConfigFileAxisMissingArgsErrors(t *testing.T) {
	name := writeTempConfig(t, "AXIS X linear -10\n")
	m := machine.New()
	if err := LoadConfigFile(name, m); err == nil {
		t.Fatalf("expected error for AXIS missing args")
	}
}

func TestLoadConfigFileChannelOddMappingErrors(t *testing.T) {
	body := "AXIS X linear -10 10\n" +
		"CHANNEL 0 0 X 1\n"
	name := writeTempConfig(t, body)
	m := machine.New()
	if err := LoadConfigFile(name, m); err == nil {
		t.Fatalf("expected error for odd axis mapping count")
	}
}

func TestLoadConfigFileHomingWithOrder(t *testing.T) {
	body := "AXIS X linear -10 10\n" +
		"AXIS Y linear -10 10\n" +
		"AXIS Z linear -10 10\n" +
		"HOMING rapid 300 2 0 1\n"
	name := writeTempConfig(t, body)
	m := machine.New()
	if err := LoadConfigFile(name, m); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	state := m.GetFullState()
	if !state.IsHoming {
		t.Fatalf("expected homing sequence to be armed")
	}
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	m := machine.New()
	if err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.conf"), m); err == nil {
		t.Fatalf("expected error opening missing file")
	}
}

func TestRegisterDirectiveAddsCustomHandler(t *testing.T) {
	var seen []string
	RegisterDirective("NOTE", func(m *machine.Machine, args []string) error {
		seen = append(seen, args...)
		return nil
	})
	name := writeTempConfig(t, "NOTE hello world\n")
	m := machine.New()
	if err := LoadConfigFile(name, m); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if len(seen) != 2 || seen[0] != "hello" || seen[1] != "world" {
		t.Fatalf("custom directive did not receive args: %+v", seen)
	}
}
