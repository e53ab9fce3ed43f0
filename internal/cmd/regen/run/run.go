package run

import (
	"fmt"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/bootstrap"
	"github.com/regenproject/regen/internal/cmd/regen/common"
	"github.com/regenproject/regen/internal/cmd/regen/common/utils"
	"github.com/regenproject/regen/internal/config"
	"github.com/regenproject/regen/internal/toolchain"
	"github.com/regenproject/regen/internal/utils/validator"
	"github.com/spf13/cobra"
)

type CmdRun struct {
	CobraCmd        *cobra.Command
	Flags           *common.CommandRunFlags
	PreCheck        func(config *bootstrap.Config) error
	Bootstrap       func(config *bootstrap.Config) (*bootstrap.RunRecord, error)
	Exec            func(config *bootstrap.Config, record *bootstrap.RunRecord) int
	PostExec        func(config *bootstrap.Config, record *bootstrap.RunRecord)
	ConfigBootstrap bootstrap.Config
	WorkDir         string
	ForwardArgs     []string
}

func NewCmdRun() *CmdRun {

	regenCmd := CmdRun{}

	return &regenCmd
}

func CmdRunFactory() *cobra.Command {
	runCommand := NewCmdRun()

	cmdRunDesc := common.RegenCmdDescription{
		Use:   "run [flags] [-- script arguments]",
		Short: "Regenerate the build scripts and execute the result",
		Long: `Synchronize git submodules, aggregate m4 macros, regenerate the
build system in gnu mode and expand the autoconf template, then execute
the generated script. Arguments after -- reach the script verbatim, in
order. The first failing step aborts the run and its exit code becomes
the exit code of regen; when every step succeeds the generated script's
own exit code is reported.`,
		Example: `regen run
regen run --regen-only
regen run --template my_template.ac --output configure-dev
regen run -- --prefix=/usr/local CC=clang`,
	}

	cmd := common.ConfigureCobraCommand(cmdRunDesc, runCommand)

	cmdFlags := common.CommandRunFlags{}
	cmd.Flags().StringVarP(&cmdFlags.Template, common.FlagNameTemplate, "t", "", common.FlagDescTemplate)
	cmd.Flags().StringVar(&cmdFlags.Output, common.FlagNameOutput, "", common.FlagDescOutput)
	cmd.Flags().StringVar(&cmdFlags.MacroDir, common.FlagNameMacroDir, "", common.FlagDescMacroDir)
	cmd.Flags().BoolVar(&cmdFlags.SkipSubmodules, common.FlagNameSkipSubmodules, false, common.FlagDescSkipSubmodules)
	cmd.Flags().BoolVar(&cmdFlags.SyncURLs, common.FlagNameSyncURLs, false, common.FlagDescSyncURLs)
	cmd.Flags().BoolVar(&cmdFlags.RegenOnly, common.FlagNameRegenOnly, false, common.FlagDescRegenOnly)
	cmd.Flags().BoolVarP(&cmdFlags.Quiet, common.FlagNameQuiet, "q", false, common.FlagDescQuiet)
	cmd.Flags().StringVar(&cmdFlags.Config, common.FlagNameConfig, "", common.FlagDescConfig)

	// everything past the first positional argument belongs to the
	// generated script, not to regen
	cmd.Flags().SetInterspersed(false)

	runCommand.CobraCmd = cmd
	runCommand.Flags = &cmdFlags

	return cmd
}

func (cmd *CmdRun) NewRunner(cobraCommand *cobra.Command, args []string) {
	cmd.PreCheck = bootstrap.PreBootstrap
	cmd.Bootstrap = bootstrap.Bootstrap
	cmd.Exec = bootstrap.Exec
	cmd.PostExec = bootstrap.PostBootstrap
	cmd.WorkDir = cobraCommand.Flag(common.FlagNameWorkDir).Value.String()
	cmd.ForwardArgs = args
}

func (cmd *CmdRun) ValidateInput(args []string) []error {
	var validationErrors []error
	filePathValidator := validator.NewFilePathStringValidator()

	if cmd.Flags.Template != "" {
		ok, err := filePathValidator.Evaluate(cmd.Flags.Template)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("template is not valid: %s", err))
		}
	}

	if cmd.Flags.Output != "" {
		ok, err := filePathValidator.Evaluate(cmd.Flags.Output)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("output is not valid: %s", err))
		}
	}

	if cmd.Flags.MacroDir != "" {
		ok, err := filePathValidator.Evaluate(cmd.Flags.MacroDir)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("m4 dir is not valid: %s", err))
		}
	}

	if cmd.Flags.RegenOnly && len(args) > 0 {
		validationErrors = append(validationErrors, fmt.Errorf("script arguments have no effect with --regen-only"))
	}

	return validationErrors
}

func (cmd *CmdRun) InputToOptions() {
	cmd.ConfigBootstrap.WorkDir = cmd.WorkDir
	cmd.ConfigBootstrap.Quiet = cmd.Flags.Quiet
	cmd.ConfigBootstrap.ForwardArgs = cmd.ForwardArgs
	cmd.ConfigBootstrap.Streams = toolchain.StdStreams()
}

func (cmd *CmdRun) Run() error {
	projectConfig, err := config.LoadProject(cmd.WorkDir, cmd.Flags.Config)
	if err != nil {
		return err
	}

	cmd.resolveConfig(projectConfig)

	if err := cmd.PreCheck(&cmd.ConfigBootstrap); err != nil {
		return err
	}

	var record *bootstrap.RunRecord
	regenerate := func() error {
		var regenErr error
		record, regenErr = cmd.Bootstrap(&cmd.ConfigBootstrap)
		return regenErr
	}

	if cmd.ConfigBootstrap.Quiet {
		err = utils.NewSpinner("Regenerating build scripts ", regenerate)
	} else {
		err = regenerate()
	}
	if err != nil {
		return fmt.Errorf("failed to regenerate build scripts: %w", err)
	}

	if cmd.Flags.RegenOnly {
		cmd.PostExec(&cmd.ConfigBootstrap, record)
		return nil
	}

	if code := cmd.Exec(&cmd.ConfigBootstrap, record); code != 0 {
		return &bootstrap.StepError{Step: types.StepExec, ExitCode: code}
	}

	return nil
}

// resolveConfig settles every pipeline option through the cascade:
// flag, environment, project configuration file, compiled default.
// Per-tool binaries from the file never override the environment.
func (cmd *CmdRun) resolveConfig(projectConfig *config.ProjectConfig) {
	cmd.ConfigBootstrap.TemplateFile = projectConfig.TemplateFile(cmd.Flags.Template)
	cmd.ConfigBootstrap.OutputScript = projectConfig.OutputScript(cmd.Flags.Output)
	cmd.ConfigBootstrap.MacroDir, cmd.ConfigBootstrap.MacroDirSet = projectConfig.MacroDirectory(cmd.Flags.MacroDir)
	cmd.ConfigBootstrap.SkipSubmodules = projectConfig.SkipSubmodules(cmd.Flags.SkipSubmodules)
	cmd.ConfigBootstrap.SyncURLs = projectConfig.SyncSubmoduleURLs(cmd.Flags.SyncURLs)

	if cmd.ConfigBootstrap.Toolchain == nil {
		cmd.ConfigBootstrap.Toolchain = toolchain.NewToolchain(cmd.WorkDir)
	}
	for tool, binary := range projectConfig.Tools {
		if cmd.ConfigBootstrap.Toolchain.Binary(tool) == string(tool) {
			cmd.ConfigBootstrap.Toolchain.SetBinary(tool, binary)
		}
	}
}
