package status

import (
	"fmt"
	"os"

	"github.com/regenproject/regen/internal/bootstrap"
	"github.com/regenproject/regen/internal/cmd/regen/common"
	"github.com/regenproject/regen/internal/cmd/regen/utils"
	"github.com/regenproject/regen/internal/utils/formatter"
	"github.com/regenproject/regen/internal/utils/validator"
	"github.com/spf13/cobra"
)

type CmdStatus struct {
	CobraCmd    *cobra.Command
	Flags       *common.CommandStatusFlags
	LoadJournal func(workDir string) (*bootstrap.RunRecord, error)
	WorkDir     string
	output      string
}

func NewCmdStatus() *CmdStatus {

	regenCmd := CmdStatus{}

	return &regenCmd
}

func CmdStatusFactory() *cobra.Command {
	statusCommand := NewCmdStatus()

	cmdStatusDesc := common.RegenCmdDescription{
		Use:   "status",
		Short: "Display the last recorded run",
		Long:  "Report the outcome of the last run recorded in the working directory journal.",
		Example: `regen status
regen -C ~/src/router status -o json`,
	}

	cmd := common.ConfigureCobraCommand(cmdStatusDesc, statusCommand)

	cmdFlags := common.CommandStatusFlags{}
	cmd.Flags().StringVarP(&cmdFlags.Output, common.FlagNameStatusOutput, "o", "", common.FlagDescStatusOutput)

	statusCommand.CobraCmd = cmd
	statusCommand.Flags = &cmdFlags

	return cmd
}

func (cmd *CmdStatus) NewRunner(cobraCommand *cobra.Command, args []string) {
	cmd.LoadJournal = bootstrap.LoadJournal
	cmd.WorkDir = cobraCommand.Flag(common.FlagNameWorkDir).Value.String()
}

func (cmd *CmdStatus) ValidateInput(args []string) []error {
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

func (cmd *CmdStatus) InputToOptions() {
	cmd.output = cmd.Flags.Output
}

func (cmd *CmdStatus) Run() error {
	record, err := cmd.LoadJournal(cmd.WorkDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No runs recorded")
			return nil
		}
		return err
	}

	if cmd.output != "" {
		encodedOutput, err := utils.Encode(cmd.output, record)
		if err != nil {
			return err
		}
		fmt.Println(encodedOutput)
		return nil
	}

	return formatter.PrintRunStatus(runData(record))
}

func runData(record *bootstrap.RunRecord) formatter.RunData {
	data := formatter.RunData{
		ID:             record.ID,
		Result:         record.Result,
		WorkDir:        record.WorkDir,
		Template:       record.TemplateFile,
		Output:         record.OutputScript,
		TemplateDigest: record.TemplateDigest,
		OutputDigest:   record.OutputDigest,
		Started:        record.StartedAt,
		Ended:          record.EndedAt,
	}
	for _, step := range record.Steps {
		data.Steps = append(data.Steps, formatter.StepData{
			Name:     string(step.Step),
			Command:  step.Command,
			ExitCode: step.ExitCode,
			Err:      step.Err,
			Duration: step.Ended.Sub(step.Started),
		})
	}
	return data
}
