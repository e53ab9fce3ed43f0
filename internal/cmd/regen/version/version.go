package version

import (
	"fmt"

	"github.com/regenproject/regen/internal/cmd/regen/common"
	"github.com/regenproject/regen/internal/cmd/regen/utils"
	"github.com/regenproject/regen/internal/utils/validator"
	"github.com/regenproject/regen/internal/version"
	"github.com/spf13/cobra"
)

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
}

type CmdVersion struct {
	CobraCmd *cobra.Command
	Flags    *common.CommandVersionFlags
	output   string
}

func NewCmdVersion() *CmdVersion {

	regenCmd := CmdVersion{}

	return &regenCmd
}

func CmdVersionFactory() *cobra.Command {
	versionCommand := NewCmdVersion()

	cmdVersionDesc := common.RegenCmdDescription{
		Use:   "version",
		Short: "Display the regen version",
		Long:  "Report the version of the regen runner in use.",
		Example: `regen version
regen version -o yaml`,
	}

	cmd := common.ConfigureCobraCommand(cmdVersionDesc, versionCommand)

	cmdFlags := common.CommandVersionFlags{}
	cmd.Flags().StringVarP(&cmdFlags.Output, common.FlagNameStatusOutput, "o", "", common.FlagDescStatusOutput)

	versionCommand.CobraCmd = cmd
	versionCommand.Flags = &cmdFlags

	return cmd
}

func (cmd *CmdVersion) NewRunner(cobraCommand *cobra.Command, args []string) {}

func (cmd *CmdVersion) ValidateInput(args []string) []error {
	var validationErrors []error
	outputTypeValidator := validator.NewOptionValidator(common.OutputTypes)

	if len(args) > 0 {
		validationErrors = append(validationErrors, fmt.Errorf("this command does not accept arguments"))
	}

	if cmd.Flags.Output != "" {
		ok, err := outputTypeValidator.Evaluate(cmd.Flags.Output)
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("output type is not valid: %s", err))
		}
	}

	return validationErrors
}

func (cmd *CmdVersion) InputToOptions() {
	cmd.output = cmd.Flags.Output
}

func (cmd *CmdVersion) Run() error {
	if cmd.output != "" {
		encodedOutput, err := utils.Encode(cmd.output, VersionInfo{Version: version.Version})
		if err != nil {
			return err
		}
		fmt.Println(encodedOutput)
		return nil
	}

	fmt.Printf("regen version %s\n", version.Version)
	return nil
}
