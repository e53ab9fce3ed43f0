package root

import (
	"github.com/regenproject/regen/internal/cmd/regen/check"
	"github.com/regenproject/regen/internal/cmd/regen/common"
	"github.com/regenproject/regen/internal/cmd/regen/run"
	"github.com/regenproject/regen/internal/cmd/regen/status"
	"github.com/regenproject/regen/internal/cmd/regen/version"
	"github.com/regenproject/regen/internal/cmd/regen/watch"
	internalcommon "github.com/regenproject/regen/internal/common"
	"github.com/spf13/cobra"
)

func NewRegenRootCommand() *cobra.Command {

	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "regen",
		Short: "Regen keeps autotools build scripts in sync with their sources",
		Long: `Regen drives the autotools bootstrap pipeline: it synchronizes git
submodules, regenerates the build script from its autoconf template and
executes it, forwarding any extra arguments verbatim.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			internalcommon.ConfigureLogging(verbose)
		},
	}

	rootCmd.AddCommand(run.CmdRunFactory())
	rootCmd.AddCommand(check.CmdCheckFactory())
	rootCmd.AddCommand(watch.CmdWatchFactory())
	rootCmd.AddCommand(status.CmdStatusFactory())
	rootCmd.AddCommand(version.CmdVersionFactory())

	rootCmd.PersistentFlags().StringP(common.FlagNameWorkDir, "C", ".", common.FlagDescWorkDir)
	rootCmd.PersistentFlags().BoolVar(&verbose, common.FlagNameVerbose, false, common.FlagDescVerbose)

	return rootCmd
}
