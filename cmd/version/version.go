package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/runtime"
)

// Default placeholder value, replaced at build time with -ldflags
var Version = "development"

func New(runtimeContext *runtime.Context) *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the botdash version",
		Long:  "This command prints the current version of the botdash CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtimeContext.Logger.Debug().Str("version", Version).Msg("Printing version")
			fmt.Fprintln(cmd.OutOrStdout(), constants.CliName, Version)
			return nil
		},
	}

	return versionCmd
}
