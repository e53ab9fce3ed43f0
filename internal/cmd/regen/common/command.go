package common

import (
	"github.com/regenproject/regen/internal/cmd/regen/common/utils"
	"github.com/spf13/cobra"
)

type RegenCommand interface {
	NewRunner(cobraCommand *cobra.Command, args []string)
	ValidateInput(args []string) []error
	InputToOptions()
	Run() error
}

type RegenCmdDescription struct {
	Use     string
	Short   string
	Long    string
	Example string
}

func ConfigureCobraCommand(description RegenCmdDescription, regenCommand RegenCommand) *cobra.Command {

	cmd := cobra.Command{
		Use:     description.Use,
		Short:   description.Short,
		Long:    description.Long,
		Example: description.Example,
		PreRun: func(cmd *cobra.Command, args []string) {
			regenCommand.NewRunner(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			utils.HandleErrorList(regenCommand.ValidateInput(args))
			regenCommand.InputToOptions()
			utils.HandleError(utils.GenericError, regenCommand.Run())
		},
	}

	return &cmd
}
