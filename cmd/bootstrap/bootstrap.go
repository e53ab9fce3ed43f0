package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/bootstrap"
	"github.com/regenproject/regen/internal/config"
	iflag "github.com/regenproject/regen/internal/flag"
	"github.com/regenproject/regen/internal/toolchain"
	"github.com/regenproject/regen/internal/version"
)

var (
	templateFile string
	outputScript string
	workDir      string
)

const (
	description = `
Regenerates the autotools build script from its autoconf template and
executes the result, in five steps: synchronize git submodules, run
aclocal, run automake in gnu mode (adding any missing helper files as
copies), expand the template with autoconf, and finally execute the
generated script.

The template (-t) flag names the autoconf input; it defaults to
configure-ci.ac. The generated script takes the template's name without
its extension and is written next to it, in the working directory
selected with -C.

Any arguments left after the flags are passed to the generated script
verbatim, in order. The first step that fails aborts the run and its
exit code becomes the exit code of this command; when every step
succeeds, the generated script's own exit code is reported.

Defaults can also be set through the REGEN_TEMPLATE, REGEN_OUTPUT,
REGEN_M4_DIR and REGEN_SKIP_SUBMODULES environment variables, or in a
.regen.yaml file in the working directory (REGEN_CONFIG selects a
different file). Flags win over the environment; the environment wins
over the file.
`
)

func main() {
	flags := flag.NewFlagSet("", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Println("Regen bootstrap")
		fmt.Printf("%s\n", description)
		fmt.Printf("Usage:\n  %s [options...] [script arguments...]\n\n", os.Args[0])
		fmt.Printf("Flags:\n")
		flags.PrintDefaults()
	}
	iflag.StringVar(flags, &templateFile, "t", types.ENV_TEMPLATE, "", "The autoconf template the build script is generated from")
	iflag.StringVar(flags, &outputScript, "o", types.ENV_OUTPUT, "", "The name of the generated build script")
	flags.StringVar(&workDir, "C", ".", "The directory the pipeline runs in")
	var skipSubmodules bool
	err := iflag.BoolVar(flags, &skipSubmodules, "s", types.ENV_SKIP_SUBMODULES, false, "Do not initialize or update git submodules")
	if err != nil {
		fmt.Println("Warning:", err)
	}
	regenOnly := flags.Bool("r", false, "Stop after regenerating the build script instead of executing it")
	isVersion := flags.Bool("v", false, "Report the version of the bootstrap command")
	flags.Parse(os.Args[1:])
	if *isVersion {
		fmt.Println(version.Version)
		os.Exit(0)
	}

	workDir, err = filepath.Abs(workDir)
	if err != nil {
		fmt.Printf("Unable to determine absolute path of %s: %v\n", workDir, err)
		os.Exit(1)
	}

	fmt.Printf("Regen bootstrap (version: %s)\n", version.Version)

	runConfig, err := buildConfig(workDir, skipSubmodules, flags.Args())
	if err != nil {
		fmt.Println("Failed to load configuration:", err)
		os.Exit(1)
	}

	if err := bootstrap.PreBootstrap(runConfig); err != nil {
		fmt.Println("Failed to bootstrap:", err)
		os.Exit(1)
	}

	record, err := bootstrap.Bootstrap(runConfig)
	if err != nil {
		fmt.Println("Failed to regenerate build scripts:", err)
		var stepErr *bootstrap.StepError
		if errors.As(err, &stepErr) {
			os.Exit(stepErr.ExitCode)
		}
		os.Exit(1)
	}

	if *regenOnly {
		bootstrap.PostBootstrap(runConfig, record)
		return
	}

	os.Exit(bootstrap.Exec(runConfig, record))
}

// buildConfig settles every pipeline option through the cascade: flag,
// environment, project configuration file, compiled default.
func buildConfig(workDir string, skipSubmodules bool, forwardArgs []string) (*bootstrap.Config, error) {
	projectConfig, err := config.LoadProject(workDir, "")
	if err != nil {
		return nil, err
	}

	runConfig := &bootstrap.Config{
		WorkDir:     workDir,
		ForwardArgs: forwardArgs,
		Toolchain:   toolchain.NewToolchain(workDir),
		Streams:     toolchain.StdStreams(),
	}
	runConfig.TemplateFile = projectConfig.TemplateFile(templateFile)
	runConfig.OutputScript = projectConfig.OutputScript(outputScript)
	runConfig.MacroDir, runConfig.MacroDirSet = projectConfig.MacroDirectory("")
	runConfig.SkipSubmodules = projectConfig.SkipSubmodules(skipSubmodules)
	runConfig.SyncURLs = projectConfig.SyncSubmoduleURLs(false)

	for tool, binary := range projectConfig.Tools {
		if runConfig.Toolchain.Binary(tool) == string(tool) {
			runConfig.Toolchain.SetBinary(tool, binary)
		}
	}
	return runConfig, nil
}
