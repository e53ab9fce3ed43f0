package bootstrap

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/common"
	"github.com/regenproject/regen/internal/toolchain"
	"github.com/regenproject/regen/internal/utils"
)

// Config carries everything one bootstrap run needs. The pipeline is
// strictly sequential: submodules, aclocal, automake, autoconf, then
// optionally the generated script itself.
type Config struct {
	WorkDir        string
	TemplateFile   string
	OutputScript   string
	MacroDir       string
	MacroDirSet    bool
	SkipSubmodules bool
	SyncURLs       bool
	Quiet          bool
	ForwardArgs    []string
	Toolchain      *toolchain.Toolchain
	Streams        toolchain.Streams
}

// StepError reports a failed pipeline stage, carrying the underlying
// tool's exit code unchanged.
type StepError struct {
	Step     types.StepName
	ExitCode int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed with exit code %d", e.Step, e.ExitCode)
}

// PreBootstrap validates the environment before any step runs: the
// working directory, an explicitly configured macro directory and the
// required tools. The template file is deliberately not checked here;
// its absence must surface as the autoconf step's own failure.
func PreBootstrap(config *Config) error {
	if config.TemplateFile == "" {
		return fmt.Errorf("template file name must not be empty")
	}
	if config.OutputScript == "" {
		return fmt.Errorf("output script name must not be empty")
	}
	if config.TemplateFile == config.OutputScript {
		return fmt.Errorf("template %q and output script must differ", config.TemplateFile)
	}

	stat, err := os.Stat(config.WorkDir)
	if err != nil {
		return fmt.Errorf("working directory %q is not usable: %v", config.WorkDir, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", config.WorkDir)
	}

	if config.MacroDirSet {
		macroDir := config.macroDirPath()
		stat, err := os.Stat(macroDir)
		if err != nil {
			return fmt.Errorf("macro directory %q is not usable: %v", macroDir, err)
		}
		if !stat.IsDir() {
			return fmt.Errorf("%s is not a directory", macroDir)
		}
	}

	for _, tool := range toolchain.RequiredTools(!config.SkipSubmodules) {
		if _, err := config.Toolchain.LookPath(tool); err != nil {
			return fmt.Errorf("required tool is not available:\n ERROR! Command not found: %s", config.Toolchain.Binary(tool))
		}
	}

	return nil
}

// Bootstrap drives the regeneration steps in order, each a hard
// dependency on the previous step's success. The first failure aborts
// the run; nothing is retried. On success the generated script is in
// place with its executable bit set.
func Bootstrap(config *Config) (*RunRecord, error) {
	logger := common.NewLogger().With(slog.String("component", "bootstrap"))
	record := newRunRecord(config)
	logger.Info("regenerating build configuration",
		slog.String("id", record.ID),
		slog.String("template", config.TemplateFile),
		slog.String("output", config.OutputScript))

	streams := config.Streams
	var capture *bytes.Buffer
	if config.Quiet {
		capture = new(bytes.Buffer)
		streams = toolchain.Streams{In: config.Streams.In, Out: capture, Err: capture}
	}

	runStep := func(result types.StepResult) error {
		record.Steps = append(record.Steps, result)
		if result.Ok() {
			return nil
		}
		record.close(types.RunResultFailed)
		if capture != nil && capture.Len() > 0 && config.Streams.Err != nil {
			fmt.Fprint(config.Streams.Err, capture.String())
		}
		saveJournal(record, logger)
		return &StepError{Step: result.Step, ExitCode: result.ExitCode}
	}

	tc := config.Toolchain
	if config.SkipSubmodules {
		logger.Debug("skipping submodule synchronization")
	} else {
		if config.SyncURLs {
			if err := runStep(tc.SubmoduleSync(streams)); err != nil {
				return record, err
			}
		}
		if err := runStep(tc.SubmoduleUpdate(streams)); err != nil {
			return record, err
		}
	}

	if err := runStep(tc.Aclocal(config.includeDir(logger), streams)); err != nil {
		return record, err
	}

	if err := runStep(tc.Automake(streams)); err != nil {
		return record, err
	}

	// autoconf writes to a temporary name first so a failure never
	// clobbers a previously generated script, and so no partially
	// written script can ever be executed.
	outputPath := config.outputPath()
	tmpPath := filepath.Join(filepath.Dir(outputPath),
		fmt.Sprintf(".%s.tmp-%d", filepath.Base(outputPath), os.Getpid()))
	if err := runStep(tc.Autoconf(config.TemplateFile, tmpPath, streams)); err != nil {
		_ = os.Remove(tmpPath)
		return record, err
	}
	if err := promote(tmpPath, outputPath); err != nil {
		record.close(types.RunResultFailed)
		saveJournal(record, logger)
		return record, err
	}

	if digest, err := utils.FileDigest(config.templatePath()); err == nil {
		record.TemplateDigest = digest
	}
	if digest, err := utils.FileDigest(outputPath); err == nil {
		record.OutputDigest = digest
	}
	record.close(types.RunResultOk)
	saveJournal(record, logger)
	logger.Debug("generated script is in place", slog.String("path", outputPath))
	return record, nil
}

// Exec runs the freshly generated script, forwarding the caller's
// arguments verbatim and preserving their order. The script's exit
// code, zero or not, becomes the runner's own.
func Exec(config *Config, record *RunRecord) int {
	logger := common.NewLogger().With(slog.String("component", "bootstrap"))
	result := config.Toolchain.RunScript(config.scriptPath(), config.ForwardArgs, config.Streams)
	record.Steps = append(record.Steps, result)
	if result.Ok() {
		record.close(types.RunResultOk)
	} else {
		record.close(types.RunResultFailed)
	}
	saveJournal(record, logger)
	logger.Debug("generated script finished",
		slog.String("script", config.scriptPath()),
		slog.Int("code", result.ExitCode))
	return result.ExitCode
}

// PostBootstrap reports where the regenerated script landed. It is
// only called when the run stops short of executing the script.
func PostBootstrap(config *Config, record *RunRecord) {
	fmt.Printf("Generated %q from %q\n", config.OutputScript, config.TemplateFile)
	fmt.Println("Script available at:", config.outputPath())
	if record.OutputDigest != "" {
		fmt.Println("Script digest:", record.OutputDigest)
	}
}

// promote moves the temporary autoconf output over the real script
// name and guarantees the executable bit before anything may run it.
func promote(tmpPath, outputPath string) error {
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to move generated script into place: %v", err)
	}
	if err := os.Chmod(outputPath, 0755); err != nil {
		return fmt.Errorf("unable to mark generated script executable: %v", err)
	}
	return nil
}

// includeDir decides what aclocal receives: the macro directory when
// it exists, nothing when the default one is simply absent. An
// explicitly configured directory was already validated by
// PreBootstrap.
func (c *Config) includeDir(logger *slog.Logger) string {
	dir := c.MacroDir
	if dir == "" {
		dir = types.DefaultMacroDir
	}
	if stat, err := os.Stat(c.resolve(dir)); err == nil && stat.IsDir() {
		return dir
	}
	logger.Debug("macro directory not present, running aclocal with its default search path",
		slog.String("dir", dir))
	return ""
}

func (c *Config) macroDirPath() string {
	dir := c.MacroDir
	if dir == "" {
		dir = types.DefaultMacroDir
	}
	return c.resolve(dir)
}

func (c *Config) templatePath() string {
	return c.resolve(c.TemplateFile)
}

func (c *Config) outputPath() string {
	return c.resolve(c.OutputScript)
}

// scriptPath names the generated script the way the exec step must
// spawn it: relative names run from the working directory.
func (c *Config) scriptPath() string {
	if filepath.IsAbs(c.OutputScript) {
		return c.OutputScript
	}
	return "./" + c.OutputScript
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.WorkDir, name)
}
