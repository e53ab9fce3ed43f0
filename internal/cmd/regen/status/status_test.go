package status

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/bootstrap"
	"github.com/regenproject/regen/internal/cmd/regen/common"
	"github.com/regenproject/regen/internal/cmd/regen/common/utils"
	"github.com/regenproject/regen/internal/utils/formatter"
	"gotest.tools/v3/assert"
)

func TestCmdStatus_ValidateInput(t *testing.T) {
	type test struct {
		name           string
		args           []string
		flags          common.CommandStatusFlags
		expectedErrors []string
	}

	testTable := []test{
		{
			name:           "no flags",
			flags:          common.CommandStatusFlags{},
			expectedErrors: []string{},
		},
		{
			name:           "args-are-not-accepted",
			args:           []string{"something"},
			flags:          common.CommandStatusFlags{},
			expectedErrors: []string{"this command does not accept arguments"},
		},
		{
			name:  "bad output format",
			flags: common.CommandStatusFlags{Output: "csv"},
			expectedErrors: []string{
				"output type is not valid: value csv not allowed. It should be one of this options: [json yaml]",
			},
		},
		{
			name:           "good output format",
			flags:          common.CommandStatusFlags{Output: "yaml"},
			expectedErrors: []string{},
		},
	}

	for _, test := range testTable {
		t.Run(test.name, func(t *testing.T) {

			command := &CmdStatus{Flags: &test.flags}

			actualErrors := command.ValidateInput(test.args)
			actualErrorsMessages := utils.ErrorsToMessages(actualErrors)
			assert.DeepEqual(t, actualErrorsMessages, test.expectedErrors)

		})
	}
}

func TestCmdStatus_Run(t *testing.T) {
	type test struct {
		name           string
		output         string
		journalMissing bool
		journalFails   bool
		errorMessage   string
	}

	testTable := []test{
		{
			name: "text output",
		},
		{
			name:   "json output",
			output: "json",
		},
		{
			name:           "no journal yet",
			journalMissing: true,
		},
		{
			name:         "journal unreadable",
			journalFails: true,
			errorMessage: "journal fails",
		},
		{
			name:         "bad format reaches run",
			output:       "toml",
			errorMessage: "format toml not supported",
		},
	}

	for _, test := range testTable {
		command := newCmdStatusWithMocks(test.journalMissing, test.journalFails)
		command.output = test.output

		t.Run(test.name, func(t *testing.T) {

			err := command.Run()
			if err != nil {
				assert.Check(t, test.errorMessage == err.Error())
			} else {
				assert.Check(t, err == nil)
			}
		})
	}
}

func TestRunData(t *testing.T) {
	started := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	record := &bootstrap.RunRecord{
		ID:           "b58ffe1a",
		Result:       types.RunResultFailed,
		WorkDir:      "/src/router",
		TemplateFile: "configure-ci.ac",
		OutputScript: "configure-ci",
		StartedAt:    started,
		EndedAt:      started.Add(time.Second),
		Steps: []types.StepResult{
			{Step: types.StepSubmodules, Command: "git", ExitCode: 0, Started: started, Ended: started.Add(200 * time.Millisecond)},
			{Step: types.StepAclocal, Command: "aclocal", ExitCode: 1, Err: "exit status 1", Started: started.Add(200 * time.Millisecond), Ended: started.Add(time.Second)},
		},
	}

	data := runData(record)

	assert.DeepEqual(t, data, formatter.RunData{
		ID:       "b58ffe1a",
		Result:   "failed",
		WorkDir:  "/src/router",
		Template: "configure-ci.ac",
		Output:   "configure-ci",
		Started:  started,
		Ended:    started.Add(time.Second),
		Steps: []formatter.StepData{
			{Name: "submodules", Command: "git", Duration: 200 * time.Millisecond},
			{Name: "aclocal", Command: "aclocal", ExitCode: 1, Err: "exit status 1", Duration: 800 * time.Millisecond},
		},
	})
}

// --- helper methods

func newCmdStatusWithMocks(journalMissing bool, journalFails bool) *CmdStatus {

	cmdMock := &CmdStatus{
		Flags:       &common.CommandStatusFlags{},
		LoadJournal: mockLoadJournal,
		WorkDir:     "/src/router",
	}
	if journalMissing {
		cmdMock.LoadJournal = mockLoadJournalMissing
	}

	if journalFails {
		cmdMock.LoadJournal = mockLoadJournalFails
	}

	return cmdMock
}

func mockLoadJournal(workDir string) (*bootstrap.RunRecord, error) {
	started := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	return &bootstrap.RunRecord{
		ID:           "b58ffe1a",
		Result:       types.RunResultOk,
		WorkDir:      workDir,
		TemplateFile: "configure-ci.ac",
		OutputScript: "configure-ci",
		StartedAt:    started,
		EndedAt:      started.Add(3 * time.Second),
		Steps: []types.StepResult{
			{Step: types.StepAutoconf, Command: "autoconf", Started: started, Ended: started.Add(time.Second)},
		},
	}, nil
}
func mockLoadJournalMissing(workDir string) (*bootstrap.RunRecord, error) {
	return nil, os.ErrNotExist
}
func mockLoadJournalFails(workDir string) (*bootstrap.RunRecord, error) {
	return nil, fmt.Errorf("journal fails")
}
