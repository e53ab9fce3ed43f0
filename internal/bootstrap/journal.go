package bootstrap

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/regenproject/regen/api/types"
	yaml "gopkg.in/yaml.v3"
)

// RunRecord is the journal entry for one bootstrap run. It is written
// best effort under <workdir>/.regen/state.yaml and never influences
// the run's exit code.
type RunRecord struct {
	ID             string             `yaml:"id" json:"id"`
	StartedAt      time.Time          `yaml:"startedAt" json:"startedAt"`
	EndedAt        time.Time          `yaml:"endedAt" json:"endedAt"`
	WorkDir        string             `yaml:"workDir" json:"workDir"`
	TemplateFile   string             `yaml:"template" json:"template"`
	OutputScript   string             `yaml:"output" json:"output"`
	TemplateDigest string             `yaml:"templateDigest,omitempty" json:"templateDigest,omitempty"`
	OutputDigest   string             `yaml:"outputDigest,omitempty" json:"outputDigest,omitempty"`
	Result         string             `yaml:"result" json:"result"`
	Steps          []types.StepResult `yaml:"steps" json:"steps"`
}

func newRunRecord(config *Config) *RunRecord {
	return &RunRecord{
		ID:           uuid.New().String(),
		StartedAt:    time.Now(),
		WorkDir:      config.WorkDir,
		TemplateFile: config.TemplateFile,
		OutputScript: config.OutputScript,
	}
}

func (r *RunRecord) close(result string) {
	r.Result = result
	r.EndedAt = time.Now()
}

// StateFilePath returns where the journal lives for a working directory.
func StateFilePath(workDir string) string {
	return filepath.Join(workDir, types.StateDirName, types.StateFileName)
}

// Save persists the record, replacing whatever the previous run left.
func (r *RunRecord) Save() error {
	stateDir := filepath.Join(r.WorkDir, types.StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("error creating state directory %s: %v", stateDir, err)
	}
	stateFile := StateFilePath(r.WorkDir)
	f, err := os.Create(stateFile)
	if err != nil {
		return fmt.Errorf("error creating file %s: %v", stateFile, err)
	}
	defer f.Close()
	e := yaml.NewEncoder(f)
	if err = e.Encode(r); err != nil {
		return fmt.Errorf("error saving file %s: %v", stateFile, err)
	}
	return nil
}

// LoadJournal reads the last recorded run for a working directory.
func LoadJournal(workDir string) (*RunRecord, error) {
	stateFile := StateFilePath(workDir)
	data, err := os.ReadFile(stateFile)
	if err != nil {
		return nil, err
	}
	record := &RunRecord{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err = decoder.Decode(record); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error decoding %s: %v", stateFile, err)
	}
	return record, nil
}

func saveJournal(record *RunRecord, logger *slog.Logger) {
	if err := record.Save(); err != nil {
		logger.Warn("unable to record run journal", slog.String("error", err.Error()))
	}
}
