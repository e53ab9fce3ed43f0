package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/regenproject/regen/api/types"
	"github.com/regenproject/regen/internal/utils"
	yaml "gopkg.in/yaml.v3"
)

// SubmodulesConfig controls the submodule synchronization step.
type SubmodulesConfig struct {
	Skip     bool `yaml:"skip,omitempty" json:"skip,omitempty"`
	SyncURLs bool `yaml:"sync-urls,omitempty" json:"sync-urls,omitempty"`
}

// ProjectConfig is the optional per-project file (.regen.yaml by
// default). Every value can still be overridden by environment
// variables and command line flags; flags win.
type ProjectConfig struct {
	Template   string                    `yaml:"template,omitempty" json:"template,omitempty"`
	Output     string                    `yaml:"output,omitempty" json:"output,omitempty"`
	MacroDir   string                    `yaml:"macro-dir,omitempty" json:"macro-dir,omitempty"`
	Submodules SubmodulesConfig          `yaml:"submodules,omitempty" json:"submodules,omitempty"`
	Tools      map[types.ToolName]string `yaml:"tools,omitempty" json:"tools,omitempty"`
	Minimum    map[types.ToolName]string `yaml:"minimum,omitempty" json:"minimum,omitempty"`
}

// ConfigFilePath resolves which config file applies for a working
// directory: explicit path, then REGEN_CONFIG, then .regen.yaml under
// the working directory.
func ConfigFilePath(workDir, explicit string) string {
	return utils.DefaultStr(explicit,
		os.Getenv(types.ENV_CONFIG),
		filepath.Join(workDir, types.DefaultConfigFile))
}

// LoadProject reads the project config. The default file missing is
// not an error; a file named through the flag or environment must
// exist, and any file that exists must parse.
func LoadProject(workDir, explicit string) (*ProjectConfig, error) {
	p := &ProjectConfig{}
	configFile := ConfigFilePath(workDir, explicit)
	required := configFile != filepath.Join(workDir, types.DefaultConfigFile)
	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return p, nil
		}
		return nil, fmt.Errorf("error loading %s: %v", configFile, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err = decoder.Decode(p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error decoding %s: %v", configFile, err)
	}
	return p, nil
}

// TemplateFile resolves the template name: flag, environment, config
// file, compiled default.
func (p *ProjectConfig) TemplateFile(flagValue string) string {
	return utils.DefaultStr(flagValue,
		os.Getenv(types.ENV_TEMPLATE),
		p.Template,
		types.DefaultTemplateFile)
}

// OutputScript resolves the generated script name.
func (p *ProjectConfig) OutputScript(flagValue string) string {
	return utils.DefaultStr(flagValue,
		os.Getenv(types.ENV_OUTPUT),
		p.Output,
		types.DefaultOutputScript)
}

// MacroDirectory resolves the aclocal include directory. The second
// return reports whether the directory was explicitly configured, in
// which case its absence is an error rather than a silent fallback.
func (p *ProjectConfig) MacroDirectory(flagValue string) (string, bool) {
	dir := utils.DefaultStr(flagValue,
		os.Getenv(types.ENV_MACRO_DIR),
		p.MacroDir)
	if dir != "" {
		return dir, true
	}
	return types.DefaultMacroDir, false
}

// SkipSubmodules resolves whether the submodule step is skipped.
func (p *ProjectConfig) SkipSubmodules(flagValue bool) bool {
	if flagValue {
		return true
	}
	if value, ok := os.LookupEnv(types.ENV_SKIP_SUBMODULES); ok {
		if skip, err := strconv.ParseBool(value); err == nil {
			return skip
		}
	}
	return p.Submodules.Skip
}

// SyncSubmoduleURLs resolves whether remote URLs are re-synchronized
// before the submodule update.
func (p *ProjectConfig) SyncSubmoduleURLs(flagValue bool) bool {
	return flagValue || p.Submodules.SyncURLs
}
