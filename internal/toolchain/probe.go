package toolchain

import (
	"regexp"
	"strings"

	"github.com/regenproject/regen/api/types"
)

var versionToken = regexp.MustCompile(`\d+(\.\d+)+`)

// ToolStatus describes how one tool resolves in the current environment.
type ToolStatus struct {
	Name     types.ToolName `json:"name" yaml:"name"`
	Binary   string         `json:"binary" yaml:"binary"`
	Path     string         `json:"path,omitempty" yaml:"path,omitempty"`
	Found    bool           `json:"found" yaml:"found"`
	Version  string         `json:"version,omitempty" yaml:"version,omitempty"`
	Minimum  string         `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Outdated bool           `json:"outdated,omitempty" yaml:"outdated,omitempty"`
}

// RequiredTools lists the binaries the pipeline needs, in step order.
// The submodule step is the only consumer of git.
func RequiredTools(withGit bool) []types.ToolName {
	tools := []types.ToolName{types.ToolAclocal, types.ToolAutomake, types.ToolAutoconf}
	if withGit {
		tools = append([]types.ToolName{types.ToolGit}, tools...)
	}
	return tools
}

// Probe resolves every tool on the PATH and discovers its version.
// Tools with a configured minimum are flagged when they fall below it.
func (t *Toolchain) Probe(minimums map[types.ToolName]string) []ToolStatus {
	var statuses []ToolStatus
	for _, tool := range RequiredTools(true) {
		status := ToolStatus{
			Name:    tool,
			Binary:  t.binaries[tool],
			Minimum: minimums[tool],
		}
		if path, err := t.lookPath(status.Binary); err == nil {
			status.Found = true
			status.Path = path
			status.Version = t.toolVersion(tool)
		}
		if status.Found && status.Minimum != "" && !IsValidFor(status.Version, status.Minimum) {
			status.Outdated = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// toolVersion extracts the version token from the first line of the
// tool's --version output. Tools that fail to report one come back
// empty rather than failing the probe.
func (t *Toolchain) toolVersion(tool types.ToolName) string {
	cmd := t.command(t.binaries[tool], "--version")
	cmd.Dir = t.workDir
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	firstLine, _, _ := strings.Cut(string(output), "\n")
	return versionToken.FindString(firstLine)
}
