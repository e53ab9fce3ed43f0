package toolchain

import (
	"bytes"
	"os/exec"
	"testing"

	"github.com/regenproject/regen/api/types"
	"gotest.tools/v3/assert"
)

type recordedCommand struct {
	name string
	args []string
}

// clearToolEnv keeps the binary resolution hermetic regardless of what
// the host environment carries.
func clearToolEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		types.ENV_GIT, types.ENV_ACLOCAL, types.ENV_AUTOMAKE, types.ENV_AUTOCONF,
		types.ENV_ACLOCAL_FALLBACK, types.ENV_AUTOMAKE_FALLBACK, types.ENV_AUTOCONF_FALLBACK,
	} {
		t.Setenv(name, "")
	}
}

func newRecordingToolchain(t *testing.T, recorded *[]recordedCommand) *Toolchain {
	t.Helper()
	clearToolEnv(t)
	tc := NewToolchain(t.TempDir())
	tc.command = func(name string, arg ...string) *exec.Cmd {
		*recorded = append(*recorded, recordedCommand{name: name, args: arg})
		return exec.Command("echo", "mock")
	}
	return tc
}

func TestStepCommands(t *testing.T) {
	tests := []struct {
		name         string
		invoke       func(tc *Toolchain) types.StepResult
		expectedName string
		expectedArgs []string
		expectedStep types.StepName
	}{
		{
			name: "submodule sync",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.SubmoduleSync(Streams{})
			},
			expectedName: "git",
			expectedArgs: []string{"submodule", "sync", "--recursive"},
			expectedStep: types.StepSubmodules,
		},
		{
			name: "submodule update",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.SubmoduleUpdate(Streams{})
			},
			expectedName: "git",
			expectedArgs: []string{"submodule", "update", "--init", "--recursive"},
			expectedStep: types.StepSubmodules,
		},
		{
			name: "aclocal with include dir",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.Aclocal("m4", Streams{})
			},
			expectedName: "aclocal",
			expectedArgs: []string{"-I", "m4"},
			expectedStep: types.StepAclocal,
		},
		{
			name: "aclocal without include dir",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.Aclocal("", Streams{})
			},
			expectedName: "aclocal",
			expectedArgs: nil,
			expectedStep: types.StepAclocal,
		},
		{
			name: "automake gnu mode",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.Automake(Streams{})
			},
			expectedName: "automake",
			expectedArgs: []string{"--gnu", "--add-missing", "--copy"},
			expectedStep: types.StepAutomake,
		},
		{
			name: "autoconf template to output",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.Autoconf("configure-ci.ac", "configure-ci", Streams{})
			},
			expectedName: "autoconf",
			expectedArgs: []string{"--output=configure-ci", "configure-ci.ac"},
			expectedStep: types.StepAutoconf,
		},
		{
			name: "generated script with forwarded args",
			invoke: func(tc *Toolchain) types.StepResult {
				return tc.RunScript("./configure-ci", []string{"--flag=value", "extra"}, Streams{})
			},
			expectedName: "./configure-ci",
			expectedArgs: []string{"--flag=value", "extra"},
			expectedStep: types.StepExec,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var recorded []recordedCommand
			tc := newRecordingToolchain(t, &recorded)
			result := test.invoke(tc)
			assert.Equal(t, len(recorded), 1)
			assert.Equal(t, recorded[0].name, test.expectedName)
			assert.DeepEqual(t, recorded[0].args, test.expectedArgs)
			assert.Equal(t, result.Step, test.expectedStep)
			assert.Assert(t, result.Ok())
		})
	}
}

func TestForwardedArgsStayVerbatim(t *testing.T) {
	var recorded []recordedCommand
	tc := newRecordingToolchain(t, &recorded)
	args := []string{"--prefix=/usr", "--with-systemduserunitdir=no", "extra", "--", "trailing"}
	tc.RunScript("./configure-ci", args, Streams{})
	assert.Equal(t, len(recorded), 1)
	assert.DeepEqual(t, recorded[0].args, args)
}

func TestBinaryOverrides(t *testing.T) {
	t.Run("environment override wins over default", func(t *testing.T) {
		clearToolEnv(t)
		t.Setenv(types.ENV_AUTOCONF, "/opt/autotools/bin/autoconf")
		tc := NewToolchain(t.TempDir())
		assert.Equal(t, tc.Binary(types.ToolAutoconf), "/opt/autotools/bin/autoconf")
	})

	t.Run("conventional variable is honored", func(t *testing.T) {
		clearToolEnv(t)
		t.Setenv(types.ENV_AUTOMAKE_FALLBACK, "automake-1.16")
		tc := NewToolchain(t.TempDir())
		assert.Equal(t, tc.Binary(types.ToolAutomake), "automake-1.16")
	})

	t.Run("prefixed variable wins over conventional", func(t *testing.T) {
		clearToolEnv(t)
		t.Setenv(types.ENV_ACLOCAL, "aclocal-regen")
		t.Setenv(types.ENV_ACLOCAL_FALLBACK, "aclocal-other")
		tc := NewToolchain(t.TempDir())
		assert.Equal(t, tc.Binary(types.ToolAclocal), "aclocal-regen")
	})

	t.Run("explicit override wins over everything", func(t *testing.T) {
		clearToolEnv(t)
		t.Setenv(types.ENV_GIT, "git-env")
		tc := NewToolchain(t.TempDir())
		tc.SetBinary(types.ToolGit, "/usr/local/bin/git")
		assert.Equal(t, tc.Binary(types.ToolGit), "/usr/local/bin/git")
	})

	t.Run("empty override keeps resolution", func(t *testing.T) {
		clearToolEnv(t)
		tc := NewToolchain(t.TempDir())
		tc.SetBinary(types.ToolGit, "")
		assert.Equal(t, tc.Binary(types.ToolGit), "git")
	})
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name             string
		command          func(name string, arg ...string) *exec.Cmd
		expectedExitCode int
		expectedOk       bool
	}{
		{
			name: "zero exit code",
			command: func(name string, arg ...string) *exec.Cmd {
				return exec.Command("true")
			},
			expectedExitCode: 0,
			expectedOk:       true,
		},
		{
			name: "tool exit code is preserved",
			command: func(name string, arg ...string) *exec.Cmd {
				return exec.Command("sh", "-c", "exit 7")
			},
			expectedExitCode: 7,
		},
		{
			name: "start failure reports 127",
			command: func(name string, arg ...string) *exec.Cmd {
				return exec.Command("/this/binary/does/not/exist")
			},
			expectedExitCode: types.ExitCodeStartFailure,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clearToolEnv(t)
			tc := NewToolchain(t.TempDir())
			tc.command = test.command
			result := tc.Automake(Streams{})
			assert.Equal(t, result.ExitCode, test.expectedExitCode)
			assert.Equal(t, result.Ok(), test.expectedOk)
			if !test.expectedOk {
				assert.Assert(t, result.Err != "")
			}
			assert.Assert(t, !result.Ended.Before(result.Started))
		})
	}
}

func TestRunStreams(t *testing.T) {
	clearToolEnv(t)
	tc := NewToolchain(t.TempDir())
	tc.command = func(name string, arg ...string) *exec.Cmd {
		return exec.Command("sh", "-c", "echo tool output; echo tool diagnostics 1>&2")
	}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	result := tc.Aclocal("m4", Streams{Out: stdout, Err: stderr})
	assert.Assert(t, result.Ok())
	assert.Equal(t, stdout.String(), "tool output\n")
	assert.Equal(t, stderr.String(), "tool diagnostics\n")
}
