package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/regenproject/regen/internal/bootstrap"
	"github.com/regenproject/regen/internal/cmd/regen/common"
	internalcommon "github.com/regenproject/regen/internal/common"
	"github.com/regenproject/regen/internal/config"
	"github.com/regenproject/regen/internal/filesystem"
	"github.com/regenproject/regen/internal/toolchain"
	"github.com/regenproject/regen/internal/utils/validator"
	"github.com/spf13/cobra"
)

type CmdWatch struct {
	CobraCmd        *cobra.Command
	Flags           *common.CommandWatchFlags
	PreCheck        func(config *bootstrap.Config) error
	Bootstrap       func(config *bootstrap.Config) (*bootstrap.RunRecord, error)
	PostExec        func(config *bootstrap.Config, record *bootstrap.RunRecord)
	StopCh          <-chan struct{}
	ConfigBootstrap bootstrap.Config
	WorkDir         string
	logger          *slog.Logger
}

func NewCmdWatch() *CmdWatch {

	regenCmd := CmdWatch{}

	return &regenCmd
}

func CmdWatchFactory() *cobra.Command {
	watchCommand := NewCmdWatch()

	cmdWatchDesc := common.RegenCmdDescription{
		Use:   "watch",
		Short: "Regenerate the build scripts whenever their sources change",
		Long: `Watch the autoconf template and the m4 macro directory and re-run
the regeneration steps on every change. The generated script is never
executed; bursts of edits are collapsed into a single regeneration.
Stop with SIGINT or SIGTERM.`,
		Example: `regen watch
regen watch --debounce 2s --skip-submodules`,
	}

	cmd := common.ConfigureCobraCommand(cmdWatchDesc, watchCommand)

	cmdFlags := common.CommandWatchFlags{}
	cmd.Flags().StringVarP(&cmdFlags.Template, common.FlagNameTemplate, "t", "", common.FlagDescTemplate)
	cmd.Flags().StringVar(&cmdFlags.Output, common.FlagNameOutput, "", common.FlagDescOutput)
	cmd.Flags().StringVar(&cmdFlags.MacroDir, common.FlagNameMacroDir, "", common.FlagDescMacroDir)
	cmd.Flags().BoolVar(&cmdFlags.SkipSubmodules, common.FlagNameSkipSubmodules, false, common.FlagDescSkipSubmodules)
	cmd.Flags().BoolVar(&cmdFlags.SyncURLs, common.FlagNameSyncURLs, false, common.FlagDescSyncURLs)
	cmd.Flags().BoolVarP(&cmdFlags.Quiet, common.FlagNameQuiet, "q", false, common.FlagDescQuiet)
	cmd.Flags().StringVar(&cmdFlags.Config, common.FlagNameConfig, "", common.FlagDescConfig)
	cmd.Flags().DurationVar(&cmdFlags.Debounce, common.FlagNameDebounce, 500*time.Millisecond, common.FlagDescDebounce)

	watchCommand.CobraCmd = cmd
	watchCommand.Flags = &cmdFlags

	return cmd
}

func (cmd *CmdWatch) NewRunner(cobraCommand *cobra.Command, args []string) {
	cmd.PreCheck = bootstrap.PreBootstrap
	cmd.Bootstrap = bootstrap.Bootstrap
	cmd.PostExec = bootstrap.PostBootstrap
	cmd.WorkDir = cobraCommand.Flag(common.FlagNameWorkDir).Value.String()
	cmd.StopCh = SetupSignalHandler()
}

func (cmd *CmdWatch) ValidateInput(args []string) []error {
	var validationErrors []error
	filePathValidator := validator.NewFilePathStringValidator()

	if len(args) > 0 {
		validationErrors = append(validationErrors, fmt.Errorf("this command does not accept arguments"))
	}

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

	if cmd.Flags.Debounce < 0 {
		validationErrors = append(validationErrors, fmt.Errorf("debounce must not be negative"))
	}

	return validationErrors
}

func (cmd *CmdWatch) InputToOptions() {
	cmd.ConfigBootstrap.Quiet = cmd.Flags.Quiet
	cmd.ConfigBootstrap.Streams = toolchain.StdStreams()
	cmd.logger = internalcommon.NewLogger().With(slog.String("component", "watch"))
}

func (cmd *CmdWatch) Run() error {
	workDir, err := filepath.Abs(cmd.WorkDir)
	if err != nil {
		return fmt.Errorf("unable to resolve working directory: %v", err)
	}
	cmd.ConfigBootstrap.WorkDir = workDir

	projectConfig, err := config.LoadProject(workDir, cmd.Flags.Config)
	if err != nil {
		return err
	}

	cmd.resolveConfig(projectConfig)

	if err := cmd.PreCheck(&cmd.ConfigBootstrap); err != nil {
		return err
	}

	watcher, err := filesystem.NewWatcher()
	if err != nil {
		return err
	}
	watcher.SetDebounce(cmd.Flags.Debounce)

	templatePath := filepath.Join(workDir, cmd.ConfigBootstrap.TemplateFile)
	macroPath := filepath.Join(workDir, cmd.ConfigBootstrap.MacroDir)
	handler := newRegenHandler(cmd.logger, templatePath, macroPath)

	watcher.Add(filepath.Dir(templatePath), handler)
	watcher.Add(macroPath, handler)
	watcher.Start(cmd.StopCh)

	cmd.logger.Info("watching for changes",
		slog.String("template", templatePath),
		slog.String("macroDir", macroPath))

	return cmd.watchLoop(handler.kick)
}

// watchLoop serializes regenerations: one at a time, with changes that
// arrive mid-run collapsing into a single follow-up.
func (cmd *CmdWatch) watchLoop(kick <-chan struct{}) error {
	for {
		select {
		case <-kick:
			cmd.regenerate()
		case <-cmd.StopCh:
			cmd.logger.Info("stopping")
			return nil
		}
	}
}

func (cmd *CmdWatch) regenerate() {
	record, err := cmd.Bootstrap(&cmd.ConfigBootstrap)
	if err != nil {
		cmd.logger.Error("regeneration failed", slog.String("error", err.Error()))
		return
	}
	cmd.PostExec(&cmd.ConfigBootstrap, record)
}

func (cmd *CmdWatch) resolveConfig(projectConfig *config.ProjectConfig) {
	cmd.ConfigBootstrap.TemplateFile = projectConfig.TemplateFile(cmd.Flags.Template)
	cmd.ConfigBootstrap.OutputScript = projectConfig.OutputScript(cmd.Flags.Output)
	cmd.ConfigBootstrap.MacroDir, cmd.ConfigBootstrap.MacroDirSet = projectConfig.MacroDirectory(cmd.Flags.MacroDir)
	cmd.ConfigBootstrap.SkipSubmodules = projectConfig.SkipSubmodules(cmd.Flags.SkipSubmodules)
	cmd.ConfigBootstrap.SyncURLs = projectConfig.SyncSubmoduleURLs(cmd.Flags.SyncURLs)

	if cmd.ConfigBootstrap.Toolchain == nil {
		cmd.ConfigBootstrap.Toolchain = toolchain.NewToolchain(cmd.ConfigBootstrap.WorkDir)
	}
	for tool, binary := range projectConfig.Tools {
		if cmd.ConfigBootstrap.Toolchain.Binary(tool) == string(tool) {
			cmd.ConfigBootstrap.Toolchain.SetBinary(tool, binary)
		}
	}
}

// regenHandler turns template and macro changes into regeneration
// kicks. The kick channel is buffered so changes arriving while a
// regeneration is running coalesce into one pending round.
type regenHandler struct {
	logger       *slog.Logger
	templatePath string
	macroDir     string
	kick         chan struct{}
}

func newRegenHandler(logger *slog.Logger, templatePath, macroDir string) *regenHandler {
	return &regenHandler{
		logger:       logger,
		templatePath: templatePath,
		macroDir:     macroDir,
		kick:         make(chan struct{}, 1),
	}
}

func (h *regenHandler) OnBasePathAdded(basePath string) {
	h.logger.Debug("watch attached", slog.String("path", basePath))
}

func (h *regenHandler) OnCreate(name string) { h.changed(name) }
func (h *regenHandler) OnUpdate(name string) { h.changed(name) }
func (h *regenHandler) OnRemove(name string) { h.changed(name) }

func (h *regenHandler) Filter(name string) bool {
	if name == h.templatePath {
		return true
	}
	// aclocal.m4 is a generated aggregate, not a source
	if filepath.Base(name) == "aclocal.m4" {
		return false
	}
	return filepath.Dir(name) == h.macroDir && strings.HasSuffix(name, ".m4")
}

func (h *regenHandler) changed(name string) {
	h.logger.Debug("change detected", slog.String("path", name))
	select {
	case h.kick <- struct{}{}:
	default:
	}
}
