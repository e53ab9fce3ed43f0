package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/regenproject/regen/api/types"
	"gotest.tools/v3/assert"
)

func TestJournalRoundTrip(t *testing.T) {
	workDir := t.TempDir()
	record := &RunRecord{
		ID:             uuid.New().String(),
		StartedAt:      time.Now().Add(-2 * time.Second),
		EndedAt:        time.Now(),
		WorkDir:        workDir,
		TemplateFile:   types.DefaultTemplateFile,
		OutputScript:   types.DefaultOutputScript,
		TemplateDigest: "aaaa",
		OutputDigest:   "bbbb",
		Result:         types.RunResultOk,
		Steps: []types.StepResult{
			{Step: types.StepAclocal, Command: "aclocal", Args: []string{"-I", "m4"}, ExitCode: 0},
			{Step: types.StepExec, Command: "./configure-ci", ExitCode: 7, Err: "exit status 7"},
		},
	}

	assert.NilError(t, record.Save())
	_, err := os.Stat(StateFilePath(workDir))
	assert.NilError(t, err)

	loaded, err := LoadJournal(workDir)
	assert.NilError(t, err)
	assert.DeepEqual(t, loaded, record, cmpopts.EquateApproxTime(time.Second))
}

func TestJournalReplacesPreviousRun(t *testing.T) {
	workDir := t.TempDir()
	first := &RunRecord{ID: "first", WorkDir: workDir, Result: types.RunResultFailed}
	assert.NilError(t, first.Save())
	second := &RunRecord{ID: "second", WorkDir: workDir, Result: types.RunResultOk}
	assert.NilError(t, second.Save())

	loaded, err := LoadJournal(workDir)
	assert.NilError(t, err)
	assert.Equal(t, loaded.ID, "second")
	assert.Equal(t, loaded.Result, types.RunResultOk)
}

func TestLoadJournalMissing(t *testing.T) {
	_, err := LoadJournal(t.TempDir())
	assert.Assert(t, os.IsNotExist(err))
}

func TestLoadJournalMalformed(t *testing.T) {
	workDir := t.TempDir()
	assert.NilError(t, os.MkdirAll(filepath.Join(workDir, types.StateDirName), 0755))
	assert.NilError(t, os.WriteFile(StateFilePath(workDir), []byte("steps: [broken"), 0644))
	_, err := LoadJournal(workDir)
	assert.ErrorContains(t, err, "error decoding")
}
