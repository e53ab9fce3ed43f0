package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/cmd/regen/common"
	"github.com/regenproject/regen/internal/cmd/regen/utils"
	"github.com/regenproject/regen/internal/config"
	"github.com/regenproject/regen/internal/toolchain"
	pkgutils "github.com/regenproject/regen/internal/utils"
	"github.com/regenproject/regen/internal/utils/formatter"
	"github.com/regenproject/regen/internal/utils/validator"
	"github.com/spf13/cobra"
)

// EnvironmentStatus is the report regen check renders.
type EnvironmentStatus struct {
	WorkDir       string                 `json:"workDir" yaml:"workDir"`
	Template      string                 `json:"template" yaml:"template"`
	TemplateFound bool                   `json:"templateFound" yaml:"templateFound"`
	MacroDir      string                 `json:"macroDir,omitempty" yaml:"macroDir,omitempty"`
	MacroFiles    []string               `json:"macroFiles,omitempty" yaml:"macroFiles,omitempty"`
	Tools         []toolchain.ToolStatus `json:"tools" yaml:"tools"`
}

type CmdCheck struct {
	CobraCmd *cobra.Command
	Flags    *common.CommandCheckFlags
	Probe    func(tc *toolchain.Toolchain, minimums map[types.ToolName]string) []toolchain.ToolStatus
	WorkDir  string
	output   string
}

func NewCmdCheck() *CmdCheck {

	regenCmd := CmdCheck{}

	return &regenCmd
}

func CmdCheckFactory() *cobra.Command {
	checkCommand := NewCmdCheck()

	cmdCheckDesc := common.RegenCmdDescription{
		Use:   "check",
		Short: "Check the build bootstrap environment",
		Long: `Verify that every tool the pipeline drives is available, report
discovered versions against configured minimums, and confirm the
template and macro directory are in place. Nothing is generated.`,
		Example: `regen check
regen check -o json`,
	}

	cmd := common.ConfigureCobraCommand(cmdCheckDesc, checkCommand)

	cmdFlags := common.CommandCheckFlags{}
	cmd.Flags().StringVarP(&cmdFlags.Template, common.FlagNameTemplate, "t", "", common.FlagDescTemplate)
	cmd.Flags().StringVar(&cmdFlags.MacroDir, common.FlagNameMacroDir, "", common.FlagDescMacroDir)
	cmd.Flags().StringVar(&cmdFlags.Config, common.FlagNameConfig, "", common.FlagDescConfig)
	cmd.Flags().StringVarP(&cmdFlags.Output, common.FlagNameStatusOutput, "o", "", common.FlagDescStatusOutput)

	checkCommand.CobraCmd = cmd
	checkCommand.Flags = &cmdFlags

	return cmd
}

func (cmd *CmdCheck) NewRunner(cobraCommand *cobra.Command, args []string) {
	cmd.Probe = probeToolchain
	cmd.WorkDir = cobraCommand.Flag(common.FlagNameWorkDir).Value.String()
}

func (cmd *CmdCheck) ValidateInput(args []string) []error {
	var validationErrors []error
	filePathValidator := validator.NewFilePathStringValidator()
	outputTypeValidator := validator.NewOptionValidator(common.OutputTypes)

	if len(args) > 0 {
		validationErrors = append(validationErrors, fmt.Errorf("this command does not accept arguments"))
	}

	if cmd.Flags.Template != "" {
		ok, err := filePathValidator.Evaluate(cmd.Flags.Template)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("template is not valid: %s", err))
		}
	}

	if cmd.Flags.MacroDir != "" {
		ok, err := filePathValidator.Evaluate(cmd.Flags.MacroDir)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("m4 dir is not valid: %s", err))
		}
	}

	if cmd.Flags.Output != "" {
		ok, err := outputTypeValidator.Evaluate(cmd.Flags.Output)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("output type is not valid: %s", err))
		}
	}

	return validationErrors
}

func (cmd *CmdCheck) InputToOptions() {
	cmd.output = cmd.Flags.Output
}

func (cmd *CmdCheck) Run() error {
	projectConfig, err := config.LoadProject(cmd.WorkDir, cmd.Flags.Config)
	if err != nil {
		return err
	}

	report, err := cmd.buildReport(projectConfig)
	if err != nil {
		return err
	}

	if cmd.output != "" {
		encodedOutput, err := utils.Encode(cmd.output, report)
		if err != nil {
			return err
		}
		fmt.Println(encodedOutput)
	} else {
		printEnvironment(report)
	}

	if problems := environmentProblems(report); len(problems) > 0 {
		return errors.New(strings.Join(problems, "\n"))
	}

	return nil
}

func (cmd *CmdCheck) buildReport(projectConfig *config.ProjectConfig) (EnvironmentStatus, error) {
	tc := toolchain.NewToolchain(cmd.WorkDir)
	for tool, binary := range projectConfig.Tools {
		if tc.Binary(tool) == string(tool) {
			tc.SetBinary(tool, binary)
		}
	}

	report := EnvironmentStatus{
		WorkDir:  cmd.WorkDir,
		Template: projectConfig.TemplateFile(cmd.Flags.Template),
		Tools:    cmd.Probe(tc, projectConfig.Minimum),
	}

	if info, err := os.Stat(filepath.Join(cmd.WorkDir, report.Template)); err == nil && !info.IsDir() {
		report.TemplateFound = true
	}

	macroDir, macroSet := projectConfig.MacroDirectory(cmd.Flags.MacroDir)
	macroPath := filepath.Join(cmd.WorkDir, macroDir)
	if info, err := os.Stat(macroPath); err == nil && info.IsDir() {
		report.MacroDir = macroDir
		reader := &pkgutils.DirectoryReader{}
		files, err := reader.ReadDir(macroPath, func(name string) bool {
			return strings.HasSuffix(name, ".m4")
		})
		if err != nil {
			return report, err
		}
		for _, file := range files {
			if rel, err := filepath.Rel(cmd.WorkDir, file); err == nil {
				file = rel
			}
			report.MacroFiles = append(report.MacroFiles, file)
		}
	} else if macroSet {
		report.MacroDir = macroDir
	}

	return report, nil
}

func printEnvironment(report EnvironmentStatus) {
	env := formatter.NewList()
	env.Item("Build environment:")

	env.NewChild(fmt.Sprintf("working directory: %s", report.WorkDir))

	templateState := "missing"
	if report.TemplateFound {
		templateState = "found"
	}
	env.NewChild(fmt.Sprintf("template: %s (%s)", report.Template, templateState))

	if report.MacroDir != "" {
		env.NewChild(fmt.Sprintf("macro dir: %s (%d macro files)", report.MacroDir, len(report.MacroFiles)))
	}

	tools := env.NewChild("tools")
	for _, tool := range report.Tools {
		tools.NewChild(toolLine(tool))
	}

	env.Print()
}

func toolLine(tool toolchain.ToolStatus) string {
	if !tool.Found {
		return fmt.Sprintf("%s: not found", tool.Name)
	}
	line := fmt.Sprintf("%s: %s", tool.Name, tool.Path)
	if tool.Version != "" {
		line = fmt.Sprintf("%s %s", line, tool.Version)
	}
	if tool.Outdated {
		line = fmt.Sprintf("%s (minimum %s)", line, tool.Minimum)
	}
	return line
}

func environmentProblems(report EnvironmentStatus) []string {
	var problems []string
	for _, tool := range report.Tools {
		if !tool.Found {
			problems = append(problems, fmt.Sprintf("required tool %s is not available as %q", tool.Name, tool.Binary))
		} else if tool.Outdated {
			problems = append(problems, fmt.Sprintf("%s %s is older than the required minimum %s", tool.Name, tool.Version, tool.Minimum))
		}
	}
	return problems
}

func probeToolchain(tc *toolchain.Toolchain, minimums map[types.ToolName]string) []toolchain.ToolStatus {
	return tc.Probe(minimums)
}
