package toolchain

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/common"
	"github.com/regenproject/regen/internal/utils"
)

type CommandExecutor func(name string, arg ...string) *exec.Cmd

type LookPathFunc func(file string) (string, error)

// Streams carries the stdio wiring for every spawned tool. Callers own
// the decision between inheriting the process streams and capturing.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams wires the tools straight to the runner's own stdio, so
// their diagnostics reach the user unmodified.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Toolchain resolves the external binaries the pipeline drives and runs
// them under a fixed working directory.
type Toolchain struct {
	workDir  string
	binaries map[types.ToolName]string
	command  CommandExecutor
	lookPath LookPathFunc
	logger   *slog.Logger
}

func NewToolchain(workDir string) *Toolchain {
	return &Toolchain{
		workDir: workDir,
		binaries: map[types.ToolName]string{
			types.ToolGit:      utils.DefaultStr(os.Getenv(types.ENV_GIT), string(types.ToolGit)),
			types.ToolAclocal:  utils.DefaultStr(os.Getenv(types.ENV_ACLOCAL), os.Getenv(types.ENV_ACLOCAL_FALLBACK), string(types.ToolAclocal)),
			types.ToolAutomake: utils.DefaultStr(os.Getenv(types.ENV_AUTOMAKE), os.Getenv(types.ENV_AUTOMAKE_FALLBACK), string(types.ToolAutomake)),
			types.ToolAutoconf: utils.DefaultStr(os.Getenv(types.ENV_AUTOCONF), os.Getenv(types.ENV_AUTOCONF_FALLBACK), string(types.ToolAutoconf)),
		},
		command:  exec.Command,
		lookPath: exec.LookPath,
		logger:   common.NewLogger().With(slog.String("component", "toolchain")),
	}
}

// SetBinary overrides the binary used for a tool. Empty values keep the
// resolution already in place.
func (t *Toolchain) SetBinary(tool types.ToolName, binary string) {
	if binary != "" {
		t.binaries[tool] = binary
	}
}

func (t *Toolchain) Binary(tool types.ToolName) string {
	return t.binaries[tool]
}

func (t *Toolchain) WorkDir() string {
	return t.workDir
}

// LookPath reports where the tool's binary resolves on the PATH.
func (t *Toolchain) LookPath(tool types.ToolName) (string, error) {
	return t.lookPath(t.binaries[tool])
}

// SubmoduleSync re-synchronizes submodule remote URLs with .gitmodules.
func (t *Toolchain) SubmoduleSync(streams Streams) types.StepResult {
	return t.run(types.StepSubmodules, t.getCmdSubmoduleSync(), streams)
}

// SubmoduleUpdate populates the submodule working trees, initializing
// any that were never checked out.
func (t *Toolchain) SubmoduleUpdate(streams Streams) types.StepResult {
	return t.run(types.StepSubmodules, t.getCmdSubmoduleUpdate(), streams)
}

// Aclocal aggregates the macros into aclocal.m4. An empty includeDir
// runs the tool with its default search path only.
func (t *Toolchain) Aclocal(includeDir string, streams Streams) types.StepResult {
	return t.run(types.StepAclocal, t.getCmdAclocal(includeDir), streams)
}

// Automake generates the build system in gnu mode, installing missing
// auxiliary files as copies rather than symlinks.
func (t *Toolchain) Automake(streams Streams) types.StepResult {
	return t.run(types.StepAutomake, t.getCmdAutomake(), streams)
}

// Autoconf expands templateFile into outputFile.
func (t *Toolchain) Autoconf(templateFile, outputFile string, streams Streams) types.StepResult {
	return t.run(types.StepAutoconf, t.getCmdAutoconf(templateFile, outputFile), streams)
}

// RunScript executes the generated script, forwarding args verbatim.
func (t *Toolchain) RunScript(script string, args []string, streams Streams) types.StepResult {
	return t.run(types.StepExec, t.command(script, args...), streams)
}

func (t *Toolchain) getCmdSubmoduleSync() *exec.Cmd {
	return t.command(t.binaries[types.ToolGit], "submodule", "sync", "--recursive")
}

func (t *Toolchain) getCmdSubmoduleUpdate() *exec.Cmd {
	return t.command(t.binaries[types.ToolGit], "submodule", "update", "--init", "--recursive")
}

func (t *Toolchain) getCmdAclocal(includeDir string) *exec.Cmd {
	if includeDir == "" {
		return t.command(t.binaries[types.ToolAclocal])
	}
	return t.command(t.binaries[types.ToolAclocal], "-I", includeDir)
}

func (t *Toolchain) getCmdAutomake() *exec.Cmd {
	return t.command(t.binaries[types.ToolAutomake], "--gnu", "--add-missing", "--copy")
}

func (t *Toolchain) getCmdAutoconf(templateFile, outputFile string) *exec.Cmd {
	return t.command(t.binaries[types.ToolAutoconf], "--output="+outputFile, templateFile)
}

func (t *Toolchain) run(step types.StepName, cmd *exec.Cmd, streams Streams) types.StepResult {
	result := types.StepResult{
		Step:    step,
		Command: cmd.Args[0],
		Args:    cmd.Args[1:],
		Started: time.Now(),
	}
	cmd.Dir = t.workDir
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err
	t.logger.Debug("running step",
		slog.String("step", string(step)),
		slog.String("command", strings.Join(cmd.Args, " ")),
		slog.String("dir", t.workDir))
	err := cmd.Run()
	result.Ended = time.Now()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = types.ExitCodeStartFailure
		}
		result.Err = err.Error()
	}
	return result
}
