package common

import (
	"time"
)

const (
	FlagNameWorkDir = "workdir"
	FlagDescWorkDir = "The directory the pipeline runs in"
	FlagNameVerbose = "verbose"
	FlagDescVerbose = "Enable debug logging"

	FlagNameTemplate = "template"
	FlagDescTemplate = "The autoconf template the build script is generated from"
	FlagNameOutput   = "output"
	FlagDescOutput   = "The name the generated build script is written to"
	FlagNameMacroDir = "m4-dir"
	FlagDescMacroDir = "A directory with extra m4 macros, passed to aclocal via -I"

	FlagNameSkipSubmodules = "skip-submodules"
	FlagDescSkipSubmodules = "Do not initialize or update git submodules before regenerating"
	FlagNameSyncURLs       = "sync-urls"
	FlagDescSyncURLs       = "Synchronize submodule remote URLs from .gitmodules before updating"

	FlagNameRegenOnly = "regen-only"
	FlagDescRegenOnly = "Stop after regenerating the build script instead of executing it"
	FlagNameQuiet     = "quiet"
	FlagDescQuiet     = "Suppress tool output while regenerating. On failure the captured output is replayed"
	FlagNameConfig    = "config"
	FlagDescConfig    = "Path to the project configuration file (default: .regen.yaml in the working directory)"

	FlagNameStatusOutput = "output"
	FlagDescStatusOutput = "Print the result to the console in the chosen format. Choices: json, yaml"

	FlagNameDebounce = "debounce"
	FlagDescDebounce = "How long to wait after the last change before regenerating"
)

type CommandRunFlags struct {
	Template       string
	Output         string
	MacroDir       string
	SkipSubmodules bool
	SyncURLs       bool
	RegenOnly      bool
	Quiet          bool
	Config         string
}

type CommandCheckFlags struct {
	Template string
	MacroDir string
	Config   string
	Output   string
}

type CommandWatchFlags struct {
	Template       string
	Output         string
	MacroDir       string
	SkipSubmodules bool
	SyncURLs       bool
	Quiet          bool
	Config         string
	Debounce       time.Duration
}

type CommandStatusFlags struct {
	Output string
}

type CommandVersionFlags struct {
	Output string
}
