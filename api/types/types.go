/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package types

import (
	"time"
)

// Default project layout, relative to the working directory
const (
	DefaultTemplateFile string = "configure-ci.ac"
	DefaultOutputScript string = "configure-ci"
	DefaultMacroDir     string = "m4"
	DefaultConfigFile   string = ".regen.yaml"
	StateDirName        string = ".regen"
	StateFileName       string = "state.yaml"
)

// ToolName identifies one of the external binaries the pipeline drives
type ToolName string

const (
	// ToolGit populates submodule trees before any generation step runs
	ToolGit ToolName = "git"
	// ToolAclocal aggregates m4 macros into aclocal.m4
	ToolAclocal = "aclocal"
	// ToolAutomake generates Makefile.in files in gnu mode
	ToolAutomake = "automake"
	// ToolAutoconf expands the template into the configure entrypoint
	ToolAutoconf = "autoconf"
)

// StepName identifies a pipeline stage, in execution order
type StepName string

const (
	StepSubmodules StepName = "submodules"
	StepAclocal             = "aclocal"
	StepAutomake            = "automake"
	StepAutoconf            = "autoconf"
	StepExec                = "exec"
)

// Environment variables honored by the configuration cascade
const (
	ENV_TEMPLATE        string = "REGEN_TEMPLATE"
	ENV_OUTPUT          string = "REGEN_OUTPUT"
	ENV_MACRO_DIR       string = "REGEN_M4_DIR"
	ENV_CONFIG          string = "REGEN_CONFIG"
	ENV_SKIP_SUBMODULES string = "REGEN_SKIP_SUBMODULES"
)

// Per-tool binary overrides. The REGEN_ prefixed form wins; the bare
// form matches what autoreconf honors.
const (
	ENV_GIT               string = "REGEN_GIT"
	ENV_ACLOCAL           string = "REGEN_ACLOCAL"
	ENV_AUTOMAKE          string = "REGEN_AUTOMAKE"
	ENV_AUTOCONF          string = "REGEN_AUTOCONF"
	ENV_ACLOCAL_FALLBACK  string = "ACLOCAL"
	ENV_AUTOMAKE_FALLBACK string = "AUTOMAKE"
	ENV_AUTOCONF_FALLBACK string = "AUTOCONF"
)

// Run outcomes recorded in the journal
const (
	RunResultOk     string = "ok"
	RunResultFailed string = "failed"
)

// ExitCodeStartFailure is reported when a step's binary could not be
// started at all, matching the shell convention for command not found.
const ExitCodeStartFailure int = 127

// StepResult captures one executed pipeline stage
type StepResult struct {
	Step     StepName  `yaml:"step" json:"step"`
	Command  string    `yaml:"command" json:"command"`
	Args     []string  `yaml:"args,omitempty" json:"args,omitempty"`
	ExitCode int       `yaml:"exitCode" json:"exitCode"`
	Started  time.Time `yaml:"started" json:"started"`
	Ended    time.Time `yaml:"ended" json:"ended"`
	Err      string    `yaml:"error,omitempty" json:"error,omitempty"`
}

// Ok reports whether the stage completed with a zero exit code
func (s StepResult) Ok() bool {
	return s.ExitCode == 0 && s.Err == ""
}
