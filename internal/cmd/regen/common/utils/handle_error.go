package utils

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/bootstrap"
)

type ErrorType int

const (
	GenericError    ErrorType = 1
	ValidationError ErrorType = 2
)

// HandleError prints err and exits. A failed pipeline step exits with
// the underlying tool's exit code; the exec step stays silent because
// the generated script already wrote its own diagnostics.
func HandleError(errType ErrorType, err error) {
	if err != nil {
		var stepErr *bootstrap.StepError
		if errors.As(err, &stepErr) {
			if stepErr.Step != types.StepExec {
				fmt.Println(err)
			}
			syscall.Exit(stepErr.ExitCode)
		}

		fmt.Println(err)
		syscall.Exit(int(errType))
	}
}

func HandleErrorList(errList []error) {
	if errList != nil && len(errList) > 0 {
		for _, err := range errList {
			fmt.Println(err)
		}

		syscall.Exit(int(ValidationError))
	}
}

func ErrorsToMessages(errs []error) []string {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return messages
}
